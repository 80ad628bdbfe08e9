package postgresql

// migrations returns the schema migration scripts, keyed by version.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE users (
				id UUID PRIMARY KEY,
				username VARCHAR(150) NOT NULL UNIQUE,
				role VARCHAR(50) NOT NULL
			);

			CREATE TABLE process_templates (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT
			);

			CREATE TABLE stages (
				id UUID PRIMARY KEY,
				template_id UUID NOT NULL REFERENCES process_templates(id) ON DELETE CASCADE,
				name VARCHAR(255) NOT NULL,
				ordinal INTEGER NOT NULL CHECK (ordinal >= 1),
				responsible VARCHAR(100) NOT NULL,
				attachment_required BOOLEAN NOT NULL DEFAULT false,
				UNIQUE (template_id, ordinal)
			);

			CREATE TABLE transitions (
				id UUID PRIMARY KEY,
				origin_stage_id UUID NOT NULL REFERENCES stages(id) ON DELETE CASCADE,
				destination_stage_id UUID NOT NULL REFERENCES stages(id) ON DELETE CASCADE,
				CONSTRAINT transitions_origin_stage_id_key UNIQUE (origin_stage_id)
			);

			CREATE TABLE field_models (
				id UUID PRIMARY KEY,
				stage_id UUID NOT NULL REFERENCES stages(id) ON DELETE CASCADE,
				name VARCHAR(255) NOT NULL,
				field_type VARCHAR(100) NOT NULL,
				required BOOLEAN NOT NULL DEFAULT false
			);

			CREATE TABLE processes (
				id UUID PRIMARY KEY,
				template_id UUID NOT NULL REFERENCES process_templates(id),
				user_id UUID NOT NULL REFERENCES users(id),
				status VARCHAR(100) NOT NULL,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE stage_executions (
				id UUID PRIMARY KEY,
				process_id UUID NOT NULL REFERENCES processes(id) ON DELETE CASCADE,
				stage_id UUID NOT NULL REFERENCES stages(id),
				user_id UUID REFERENCES users(id),
				notes TEXT NOT NULL DEFAULT '',
				attachment_id VARCHAR(255),
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				ended_at TIMESTAMP WITH TIME ZONE,
				status VARCHAR(100) NOT NULL
			);

			CREATE TABLE field_values (
				id UUID PRIMARY KEY,
				field_model_id UUID NOT NULL REFERENCES field_models(id),
				execution_id UUID NOT NULL REFERENCES stage_executions(id) ON DELETE CASCADE,
				data TEXT NOT NULL
			);

			CREATE INDEX idx_stages_template_id ON stages(template_id);
			CREATE INDEX idx_field_models_stage_id ON field_models(stage_id);
			CREATE INDEX idx_processes_status ON processes(status);
			CREATE INDEX idx_stage_executions_process_id ON stage_executions(process_id);
			CREATE INDEX idx_stage_executions_status ON stage_executions(status);
			CREATE INDEX idx_field_values_execution_id ON field_values(execution_id);
		`,
	}
}
