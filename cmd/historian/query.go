// Query command: filtered history retrieval.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/historian/pkg/types"
)

var queryFlags struct {
	teams     []string
	from      string
	to        string
	status    string
	tags      []string
	search    string
	createdBy string
	limit     int
	offset    int
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query changelog history with filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := buildFilters()
		if err != nil {
			return err
		}

		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		entries, err := backend.Query(cmd.Context(), filters)
		if err != nil {
			return err
		}
		return printResult(entries, func() { printEntries(entries) })
	},
}

// buildFilters assembles HistoryFilters from the query flags.
func buildFilters() (types.HistoryFilters, error) {
	filters := types.HistoryFilters{
		TeamIDs:    queryFlags.teams,
		Status:     queryFlags.status,
		Tags:       queryFlags.tags,
		SearchText: queryFlags.search,
		CreatedBy:  queryFlags.createdBy,
		Limit:      queryFlags.limit,
		Offset:     queryFlags.offset,
	}
	if queryFlags.from != "" {
		t, err := parseDate(queryFlags.from)
		if err != nil {
			return filters, err
		}
		filters.StartDate = &t
	}
	if queryFlags.to != "" {
		t, err := parseDate(queryFlags.to)
		if err != nil {
			return filters, err
		}
		filters.EndDate = &t
	}
	return filters, nil
}

func init() {
	queryCmd.Flags().StringSliceVar(&queryFlags.teams, "team", nil, "team IDs (repeatable)")
	queryCmd.Flags().StringVar(&queryFlags.from, "from", "", "start date (YYYY-MM-DD, inclusive)")
	queryCmd.Flags().StringVar(&queryFlags.to, "to", "", "end date (YYYY-MM-DD, inclusive)")
	queryCmd.Flags().StringVar(&queryFlags.status, "status", "", "status filter (draft|published|archived|deleted)")
	queryCmd.Flags().StringSliceVar(&queryFlags.tags, "tag", nil, "match entries carrying any of these tags")
	queryCmd.Flags().StringVar(&queryFlags.search, "search", "", "free-text substring match over content")
	queryCmd.Flags().StringVar(&queryFlags.createdBy, "created-by", "", "author filter")
	queryCmd.Flags().IntVar(&queryFlags.limit, "limit", 0, "page size (default 50)")
	queryCmd.Flags().IntVar(&queryFlags.offset, "offset", 0, "page offset")
}
