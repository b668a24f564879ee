package studentsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/interfaces/ihistoryrepo"
	"github.com/corray333/backend-labs/cafeteria/internal/dal/interfaces/istudentrepo"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/record"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/student"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"
)


// StudentService registers and authenticates students.
type StudentService struct {
	studentRepo istudentrepo.IStudentRepository
	historyRepo ihistoryrepo.IHistoryRepository
	hashCost    int

	// dummyHash is compared against on unknown ids.
	dummyHash string
}

// option is a function that configures the StudentService.
type option func(*StudentService)

// MustNewStudentService creates a new StudentService.
func MustNewStudentService(opts ...option) *StudentService {
	s := &StudentService{hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}

	if s.studentRepo == nil {
		panic("student service requires a student repository")
	}

	hash, err := hashPassword("cafeteria-dummy-password", s.hashCost)
	if err != nil {
		panic(fmt.Sprintf("failed to prepare dummy hash: %v", err))
	}
	s.dummyHash = hash

	return s
}

// WithStudentRepository sets the student repository for the StudentService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStudentRepository(repo istudentrepo.IStudentRepository) option {
	return func(s *StudentService) {
		s.studentRepo = repo
	}
}

// WithHistoryRepository sets the order history repository for the StudentService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithHistoryRepository(repo ihistoryrepo.IHistoryRepository) option {
	return func(s *StudentService) {
		s.historyRepo = repo
	}
}

// WithHashCost sets the bcrypt cost for new passwords.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithHashCost(cost int) option {
	return func(s *StudentService) {
		s.hashCost = cost
	}
}

// Register creates a student account. An existing id fails with
// ErrDuplicateIdentity and leaves the stored account untouched.
func (s *StudentService) Register(ctx context.Context, name, id, password string) (student.Student, error) {
	_, span := otel.Tracer("studentsvc").Start(ctx, "StudentService.Register")
	defer span.End()

	if err := record.ValidateField("name", name); err != nil {
		return student.Student{}, err
	}
	if err := record.ValidateField("id", id); err != nil {
		return student.Student{}, err
	}
	if password == "" {
		return student.Student{}, fmt.Errorf("%w: empty password", apperrors.ErrInvalidArgument)
	}

	if s.studentRepo.Exists(id) {
		return student.Student{}, fmt.Errorf("student %s: %w", id, apperrors.ErrDuplicateIdentity)
	}

	hash, err := hashPassword(password, s.hashCost)
	if err != nil {
		return student.Student{}, fmt.Errorf("failed to hash password: %w", err)
	}

	st := student.New(id, name, hash)
	if err := s.studentRepo.Create(st); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return student.Student{}, fmt.Errorf("student %s: %w", id, apperrors.ErrDuplicateIdentity)
		}

		return student.Student{}, err
	}

	slog.Info("Student registered", "student_id", id)

	return st, nil
}

// Login returns the student when the password matches.
func (s *StudentService) Login(ctx context.Context, id, password string) (student.Student, bool) {
	_, span := otel.Tracer("studentsvc").Start(ctx, "StudentService.Login")
	defer span.End()

	st, err := s.studentRepo.Get(id)
	if err != nil {
		checkPassword(s.dummyHash, password)
		slog.Info("Login failed", "student_id", id)

		return student.Student{}, false
	}
	if !checkPassword(st.PasswordHash, password) {
		slog.Info("Login failed", "student_id", id)

		return student.Student{}, false
	}

	return st, true
}

// Get returns the student with the given id.
func (s *StudentService) Get(ctx context.Context, id string) (student.Student, error) {
	_, span := otel.Tracer("studentsvc").Start(ctx, "StudentService.Get")
	defer span.End()

	return s.studentRepo.Get(id)
}

// Exists reports whether the id is registered.
func (s *StudentService) Exists(ctx context.Context, id string) bool {
	_, span := otel.Tracer("studentsvc").Start(ctx, "StudentService.Exists")
	defer span.End()

	return s.studentRepo.Exists(id)
}

// History returns the ids of the student's orders in placement order.
func (s *StudentService) History(ctx context.Context, id string) []string {
	_, span := otel.Tracer("studentsvc").Start(ctx, "StudentService.History")
	defer span.End()

	if s.historyRepo == nil {
		return []string{}
	}

	return s.historyRepo.OrderIDs(id)
}
