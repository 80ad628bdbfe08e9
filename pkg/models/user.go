package models

// Role labels used both for authorization and for inbox matching against
// Stage.Responsible.
type Role string

const (
	RoleCoordenador Role = "COORDENADOR"
	RoleOrientador  Role = "ORIENTADOR"
	RoleJIJ         Role = "JIJ"
)

// User is the minimal principal the tracker needs: identity plus role.
// Account management and authentication live elsewhere.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
