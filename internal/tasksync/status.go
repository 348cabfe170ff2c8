package tasksync

import (
	"strings"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
)

// Filter names a dashboard bucket.
type Filter string

const (
	FilterOpen      Filter = "open"
	FilterProgress  Filter = "progress"
	FilterCompleted Filter = "completed"
	FilterCancelled Filter = "cancelled"
)

var Filters = []Filter{FilterOpen, FilterProgress, FilterCompleted, FilterCancelled}

// Raw status strings the portal has been seen to use for each bucket.
var synonyms = map[Filter][]string{
	FilterOpen:      {"pending", "open"},
	FilterProgress:  {"in_progress", "in progress", "progress"},
	FilterCompleted: {"completed", "complete"},
	FilterCancelled: {"cancelled", "canceled"},
}

// ParseFilter accepts a filter name in any case.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := synonyms[f]; !ok {
		return "", &ValidationError{Field: "filter", Message: "must be one of open, progress, completed, cancelled", Err: ErrUnknownFilter}
	}
	return f, nil
}

// BucketOf returns the bucket a raw status falls into, or false when the
// status is unrecognised.
func BucketOf(status string) (Filter, bool) {
	status = strings.ToLower(status)
	for _, f := range Filters {
		for _, s := range synonyms[f] {
			if status == s {
				return f, true
			}
		}
	}
	return "", false
}

type StatusCounts struct {
	Open         int `json:"open"`
	InProgress   int `json:"in_progress"`
	Completed    int `json:"completed"`
	Cancelled    int `json:"cancelled"`
	Unrecognized int `json:"unrecognized"`
}

func (c StatusCounts) Total() int {
	return c.Open + c.InProgress + c.Completed + c.Cancelled + c.Unrecognized
}

func ComputeStatusCounts(tasks []model.Task) StatusCounts {
	var counts StatusCounts
	for _, task := range tasks {
		bucket, ok := BucketOf(task.Status)
		if !ok {
			counts.Unrecognized++
			continue
		}
		switch bucket {
		case FilterOpen:
			counts.Open++
		case FilterProgress:
			counts.InProgress++
		case FilterCompleted:
			counts.Completed++
		case FilterCancelled:
			counts.Cancelled++
		}
	}
	return counts
}

// FilterByStatus returns a new slice with the tasks whose status is a synonym
// of the given filter. The input slice is never modified.
func FilterByStatus(tasks []model.Task, filter string) ([]model.Task, error) {
	f, err := ParseFilter(filter)
	if err != nil {
		return nil, err
	}

	filtered := []model.Task{}
	for _, task := range tasks {
		if bucket, ok := BucketOf(task.Status); ok && bucket == f {
			filtered = append(filtered, task)
		}
	}
	return filtered, nil
}
