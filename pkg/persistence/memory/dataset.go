package memory

import "github.com/bdedica/tramite/pkg/models"

// dataset holds every table. Entities are stored by value-copy so a
// caller mutating a returned pointer cannot corrupt the store.
type dataset struct {
	templates   map[string]*models.ProcessTemplate
	stages      map[string]*models.Stage
	transitions map[string]*models.Transition
	fieldModels map[string]*models.FieldModel
	processes   map[string]*models.Process
	executions  map[string]*models.StageExecution
	fieldValues map[string]*models.FieldValue
	users       map[string]*models.User

	// seq orders executions created within the same timestamp.
	seq           int64
	executionSeqs map[string]int64
}

func newDataset() *dataset {
	return &dataset{
		templates:     make(map[string]*models.ProcessTemplate),
		stages:        make(map[string]*models.Stage),
		transitions:   make(map[string]*models.Transition),
		fieldModels:   make(map[string]*models.FieldModel),
		processes:     make(map[string]*models.Process),
		executions:    make(map[string]*models.StageExecution),
		fieldValues:   make(map[string]*models.FieldValue),
		users:         make(map[string]*models.User),
		executionSeqs: make(map[string]int64),
	}
}

func (d *dataset) clone() *dataset {
	out := &dataset{
		templates:     cloneMap(d.templates),
		stages:        cloneMap(d.stages),
		transitions:   cloneMap(d.transitions),
		fieldModels:   cloneMap(d.fieldModels),
		processes:     cloneMap(d.processes),
		executions:    cloneMap(d.executions),
		fieldValues:   cloneMap(d.fieldValues),
		users:         cloneMap(d.users),
		seq:           d.seq,
		executionSeqs: make(map[string]int64, len(d.executionSeqs)),
	}

	for id, seq := range d.executionSeqs {
		out.executionSeqs[id] = seq
	}

	return out
}

func cloneMap[V any](in map[string]*V) map[string]*V {
	out := make(map[string]*V, len(in))

	for key, value := range in {
		copied := *value
		out[key] = &copied
	}

	return out
}
