package flatfilerepo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/flatfile"
	"github.com/corray333/backend-labs/cafeteria/internal/dal/repositories/table"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/history"
)

// FileName is the order history table file.
const FileName = "order_history.txt"

// HistoryCodec encodes histories as studentId|orderId,orderId,...
type HistoryCodec struct{}

func (HistoryCodec) Key(h history.History) string { return h.StudentID }

func (HistoryCodec) Encode(h history.History) string {
	return h.StudentID + "|" + strings.Join(h.OrderIDs, ",")
}

func (HistoryCodec) Decode(record string) (history.History, error) {
	studentID, ids, ok := strings.Cut(record, "|")
	if !ok || studentID == "" {
		return history.History{}, fmt.Errorf("malformed history record")
	}

	h := history.History{StudentID: studentID, OrderIDs: []string{}}
	for _, id := range strings.Split(ids, ",") {
		if id != "" {
			h.OrderIDs = append(h.OrderIDs, id)
		}
	}

	return h, nil
}

// HistoryRepository stores every student's ordered list of order ids.
type HistoryRepository struct {
	*table.Table[string, history.History]
}

// NewHistoryRepository creates a history repository; call Load before use.
func NewHistoryRepository(client *flatfile.Client) *HistoryRepository {
	return &HistoryRepository{
		Table: table.New[string, history.History]("order_history", client.Store(FileName), HistoryCodec{}),
	}
}

// Append adds orderID to the end of the student's history.
func (r *HistoryRepository) Append(studentID, orderID string) error {
	_, err := r.Apply(studentID, func(h history.History) (history.History, error) {
		return h.Append(orderID), nil
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		err = r.Create(history.History{StudentID: studentID, OrderIDs: []string{orderID}})
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return r.Append(studentID, orderID)
		}
	}

	return err
}

// OrderIDs returns the student's order ids in placement order.
func (r *HistoryRepository) OrderIDs(studentID string) []string {
	h, err := r.Get(studentID)
	if err != nil {
		return []string{}
	}

	return h.OrderIDs
}
