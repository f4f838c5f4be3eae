package engine

import (
	"errors"
	"fmt"
)

// EmptyNotice is shown when a filter combination matches no transactions.
const EmptyNotice = "no data for this combination"

var ErrInvalidQuery = errors.New("invalid query")

// MissingCategoryError means an item selected for reporting has no
// transactions in the filtered set.
type MissingCategoryError struct {
	ItemCode string
}

func (e *MissingCategoryError) Error() string {
	return fmt.Sprintf("missing category: item %q has no matching transactions", e.ItemCode)
}
