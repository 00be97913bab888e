package queue

// Next selects the pending task with the highest priority; ties break to the
// earliest CreatedAt so a priority band drains FIFO. Returns nil when the
// queue has no pending work. Pure read, no side effects.
func Next(store Store) (*Task, error) {
	pending, err := store.List(ListFilter{Status: StatusPending})
	if err != nil {
		return nil, err
	}

	var best *Task
	for _, t := range pending {
		if best == nil {
			best = t
			continue
		}
		if t.Priority > best.Priority {
			best = t
			continue
		}
		if t.Priority == best.Priority && t.CreatedAt.Before(best.CreatedAt) {
			best = t
		}
	}
	return best, nil
}
