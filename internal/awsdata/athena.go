package awsdata

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"

	"github.com/quiltdata/quiltmcp/internal/apperr"
)

// AthenaQuery is the request shape for ExecuteQuery: (sql, workgroup,
// catalog, schema), matching the spec's AthenaQuery entity.
type AthenaQuery struct {
	SQL       string
	Workgroup string
	Catalog   string
	Schema    string
}

// AthenaRow is one decoded result row, column name -> string value.
type AthenaRow map[string]string

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// athenaAPI is the narrow subset of *athena.Client these helpers need,
// letting tests substitute a fake without a live AWS account.
type athenaAPI interface {
	ListWorkGroups(context.Context, *athena.ListWorkGroupsInput, ...func(*athena.Options)) (*athena.ListWorkGroupsOutput, error)
	StartQueryExecution(context.Context, *athena.StartQueryExecutionInput, ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(context.Context, *athena.GetQueryExecutionInput, ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(context.Context, *athena.GetQueryResultsInput, ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

// ResolveWorkgroup returns explicit if set, else the configured default, else
// the first ENABLED workgroup discovered via ListWorkGroups.
func ResolveWorkgroup(ctx context.Context, client athenaAPI, explicit, configuredDefault string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if configuredDefault != "" {
		return configuredDefault, nil
	}
	resp, err := client.ListWorkGroups(ctx, &athena.ListWorkGroupsInput{})
	if err != nil {
		return "", apperr.Wrap(apperr.UpstreamUnavailable, "list athena workgroups", err)
	}
	for _, wg := range resp.WorkGroups {
		if wg.State == types.WorkGroupStateEnabled {
			return *wg.Name, nil
		}
	}
	return "", apperr.New(apperr.NotFound, "no enabled athena workgroup found")
}

// ExecuteQuery runs the full Athena lifecycle: StartQueryExecution with the
// catalog passed via QueryExecutionContext.Catalog (never a "USE" prefix —
// required for hyphenated schema names some engines can't quote-parse),
// then polls GetQueryExecution with exponential backoff from 200ms capped
// at 5s until a terminal state, honoring ctx cancellation between polls,
// then pages GetQueryResults.
func ExecuteQuery(ctx context.Context, client athenaAPI, q AthenaQuery) ([]AthenaRow, error) {
	qec := &types.QueryExecutionContext{}
	if q.Catalog != "" {
		qec.Catalog = &q.Catalog
	}
	if q.Schema != "" {
		qec.Database = &q.Schema
	}

	startResp, err := client.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString:           &q.SQL,
		QueryExecutionContext: qec,
		WorkGroup:             &q.Workgroup,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.UpstreamUnavailable, "start athena query", err)
	}
	executionID := *startResp.QueryExecutionId

	if err := pollUntilTerminal(ctx, client, executionID); err != nil {
		return nil, err
	}

	return fetchResults(ctx, client, executionID)
}

func pollUntilTerminal(ctx context.Context, client athenaAPI, executionID string) error {
	backoff := initialBackoff
	for {
		resp, err := client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{QueryExecutionId: &executionID})
		if err != nil {
			return apperr.Wrap(apperr.UpstreamUnavailable, "get athena query execution", err)
		}
		state := resp.QueryExecution.Status.State
		switch state {
		case types.QueryExecutionStateSucceeded:
			return nil
		case types.QueryExecutionStateFailed:
			reason := ""
			if resp.QueryExecution.Status.StateChangeReason != nil {
				reason = *resp.QueryExecution.Status.StateChangeReason
			}
			return apperr.New(apperr.UpstreamUnavailable, "athena query failed: "+reason)
		case types.QueryExecutionStateCancelled:
			return apperr.New(apperr.Conflict, "athena query was cancelled")
		}

		select {
		case <-ctx.Done():
			return apperr.Wrap(apperr.Timeout, "athena polling cancelled", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func fetchResults(ctx context.Context, client athenaAPI, executionID string) ([]AthenaRow, error) {
	paginator := athena.NewGetQueryResultsPaginator(client, &athena.GetQueryResultsInput{QueryExecutionId: &executionID})

	var columns []string
	var rows []AthenaRow
	first := true
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperr.Wrap(apperr.UpstreamUnavailable, "get athena query results", err)
		}
		if columns == nil && page.ResultSet.ResultSetMetadata != nil {
			for _, col := range page.ResultSet.ResultSetMetadata.ColumnInfo {
				columns = append(columns, *col.Name)
			}
		}
		for i, row := range page.ResultSet.Rows {
			if first && i == 0 {
				// the first row of the first page is the header row
				continue
			}
			r := make(AthenaRow, len(columns))
			for j, datum := range row.Data {
				if j >= len(columns) {
					break
				}
				val := ""
				if datum.VarCharValue != nil {
					val = *datum.VarCharValue
				}
				r[columns[j]] = val
			}
			rows = append(rows, r)
		}
		first = false
	}
	return rows, nil
}
