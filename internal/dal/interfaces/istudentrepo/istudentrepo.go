package istudentrepo

import (
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/student"
)

// IStudentRepository is an interface for the student table.
type IStudentRepository interface {
	Get(id string) (student.Student, error)
	Exists(id string) bool
	Create(s student.Student) error
	Apply(id string, mutate func(student.Student) (student.Student, error)) (student.Student, error)
}
