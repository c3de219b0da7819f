package audit

import "context"

type EntryRepository interface {
	Insert(ctx context.Context, e *Entry) error
	// ListByPair returns entries for a (patient, doctor) pair ordered by
	// recorded_at then id, oldest first.
	ListByPair(ctx context.Context, patient, doctor string) ([]*Entry, error)
	// ListAll returns a page of the whole log plus the total count.
	ListAll(ctx context.Context, limit, offset int) ([]*Entry, int, error)
}
