// Package stratify splits a dataset into strata by the value of its absolute column.
package stratify

import (
	"fmt"

	"setsplit/domain/core"
	"setsplit/domain/dataset"
	"setsplit/domain/partition"
)

// Group is one stratum together with its sub-dataset. The absolute column is
// removed from Data so it is never clustered or tested.
type Group struct {
	Stratum partition.Stratum
	Data    *dataset.Dataset
}

// Split groups items by exact value of column, in first-seen order. An empty
// column name yields a single stratum holding every item.
func Split(d *dataset.Dataset, column string) ([]Group, error) {
	if column == "" {
		return []Group{{
			Stratum: partition.Stratum{Label: partition.OverallStratum, Items: append([]core.ItemID{}, d.IDs...)},
			Data:    d,
		}}, nil
	}

	cells, err := d.Column(column)
	if err != nil {
		return nil, fmt.Errorf("%w: absolute column %q", core.ErrUnknownColumn, column)
	}
	stripped, err := d.WithoutColumn(column)
	if err != nil {
		return nil, err
	}

	var order []string
	members := make(map[string][]core.ItemID)
	for i, value := range cells {
		if _, ok := members[value]; !ok {
			order = append(order, value)
		}
		members[value] = append(members[value], d.IDs[i])
	}

	groups := make([]Group, 0, len(order))
	for _, value := range order {
		sub, err := stripped.Select(members[value])
		if err != nil {
			return nil, err
		}
		groups = append(groups, Group{
			Stratum: partition.Stratum{Label: value, Items: members[value]},
			Data:    sub,
		})
	}
	return groups, nil
}
