package ihistoryrepo

// IHistoryRepository keeps the ordered order ids of every student.
type IHistoryRepository interface {
	Append(studentID, orderID string) error
	OrderIDs(studentID string) []string
}
