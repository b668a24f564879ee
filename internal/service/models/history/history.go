package history

// History is the ordered list of orders a student has placed.
type History struct {
	StudentID string   `json:"studentId"`
	OrderIDs  []string `json:"orderIds"`
}

// Append returns h with orderID added at the end.
func (h History) Append(orderID string) History {
	ids := make([]string, 0, len(h.OrderIDs)+1)
	ids = append(ids, h.OrderIDs...)
	h.OrderIDs = append(ids, orderID)

	return h
}
