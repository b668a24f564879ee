package flatfilerepo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/flatfile"
	"github.com/corray333/backend-labs/cafeteria/internal/dal/repositories/table"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/student"
)

// FileName is the student table file.
const FileName = "students.txt"

// Separator delimits student record fields.
const Separator = ";"

// StudentCodec encodes students as name;id;passwordHash;points;walletBalance.
type StudentCodec struct{}

func (StudentCodec) Key(s student.Student) string { return s.ID }

func (StudentCodec) Encode(s student.Student) string {
	return strings.Join([]string{
		s.Name,
		s.ID,
		s.PasswordHash,
		strconv.Itoa(s.Points),
		s.Wallet.String(),
	}, Separator)
}

// Decode accepts records with at least name, id and hash; points and wallet default to zero.
func (StudentCodec) Decode(record string) (student.Student, error) {
	p := strings.Split(record, Separator)
	if len(p) < 3 {
		return student.Student{}, fmt.Errorf("short student record: %d fields", len(p))
	}
	if p[1] == "" {
		return student.Student{}, fmt.Errorf("student record without id")
	}

	points := 0
	if len(p) >= 4 && p[3] != "" {
		n, err := strconv.Atoi(strings.TrimSpace(p[3]))
		if err != nil {
			return student.Student{}, fmt.Errorf("invalid points %q: %w", p[3], err)
		}
		points = n
	}

	wallet := money.Zero
	if len(p) >= 5 && p[4] != "" {
		w, err := money.Parse(strings.TrimSpace(p[4]))
		if err != nil {
			return student.Student{}, err
		}
		wallet = w
	}

	return student.Restore(p[1], p[0], p[2], points, wallet)
}

// StudentRepository stores students in a flat table file.
type StudentRepository struct {
	*table.Table[string, student.Student]
}

// NewStudentRepository creates a student repository; call Load before use.
func NewStudentRepository(client *flatfile.Client) *StudentRepository {
	return &StudentRepository{
		Table: table.New[string, student.Student]("students", client.Store(FileName), StudentCodec{}),
	}
}
