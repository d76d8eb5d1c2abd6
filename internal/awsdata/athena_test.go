package awsdata

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAthena stubs the athenaAPI methods ExecuteQuery depends on, recording
// the StartQueryExecution input so the hyphenated-schema no-USE-prefix
// invariant can be asserted directly, and replaying a scripted state
// sequence to exercise the polling loop without real AWS latency.
type fakeAthena struct {
	startInput *athena.StartQueryExecutionInput
	states     []types.QueryExecutionState
	pollCount  int
	resultCols []string
	resultRows [][]string
}

func (f *fakeAthena) ListWorkGroups(ctx context.Context, in *athena.ListWorkGroupsInput, opts ...func(*athena.Options)) (*athena.ListWorkGroupsOutput, error) {
	name := "discovered-wg"
	return &athena.ListWorkGroupsOutput{
		WorkGroups: []types.WorkGroupSummary{{Name: &name, State: types.WorkGroupStateEnabled}},
	}, nil
}

func (f *fakeAthena) StartQueryExecution(ctx context.Context, in *athena.StartQueryExecutionInput, opts ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error) {
	f.startInput = in
	id := "exec-1"
	return &athena.StartQueryExecutionOutput{QueryExecutionId: &id}, nil
}

func (f *fakeAthena) GetQueryExecution(ctx context.Context, in *athena.GetQueryExecutionInput, opts ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error) {
	state := f.states[f.pollCount]
	if f.pollCount < len(f.states)-1 {
		f.pollCount++
	}
	return &athena.GetQueryExecutionOutput{
		QueryExecution: &types.QueryExecution{Status: &types.QueryExecutionStatus{State: state}},
	}, nil
}

func (f *fakeAthena) GetQueryResults(ctx context.Context, in *athena.GetQueryResultsInput, opts ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error) {
	cols := make([]types.ColumnInfo, len(f.resultCols))
	for i, c := range f.resultCols {
		name := c
		cols[i] = types.ColumnInfo{Name: &name}
	}
	rows := make([]types.Row, 0, len(f.resultRows)+1)
	header := make([]types.Datum, len(f.resultCols))
	for i, c := range f.resultCols {
		v := c
		header[i] = types.Datum{VarCharValue: &v}
	}
	rows = append(rows, types.Row{Data: header})
	for _, r := range f.resultRows {
		data := make([]types.Datum, len(r))
		for i, v := range r {
			val := v
			data[i] = types.Datum{VarCharValue: &val}
		}
		rows = append(rows, types.Row{Data: data})
	}
	return &athena.GetQueryResultsOutput{
		ResultSet: &types.ResultSet{
			ResultSetMetadata: &types.ResultSetMetadata{ColumnInfo: cols},
			Rows:              rows,
		},
	}, nil
}

func TestResolveWorkgroup_PrefersExplicitThenConfiguredThenDiscovered(t *testing.T) {
	wg, err := ResolveWorkgroup(context.Background(), &fakeAthena{}, "explicit-wg", "default-wg")
	require.NoError(t, err)
	assert.Equal(t, "explicit-wg", wg)

	wg, err = ResolveWorkgroup(context.Background(), &fakeAthena{}, "", "default-wg")
	require.NoError(t, err)
	assert.Equal(t, "default-wg", wg)

	wg, err = ResolveWorkgroup(context.Background(), &fakeAthena{}, "", "")
	require.NoError(t, err)
	assert.Equal(t, "discovered-wg", wg)
}

func TestExecuteQuery_HyphenatedSchemaUsesCatalogContextNotUsePrefix(t *testing.T) {
	fake := &fakeAthena{
		states:     []types.QueryExecutionState{types.QueryExecutionStateSucceeded},
		resultCols: []string{"_col0"},
		resultRows: [][]string{{"1"}},
	}

	rows, err := ExecuteQuery(context.Background(), fake, AthenaQuery{
		SQL: "SELECT 1", Workgroup: "primary", Catalog: "AwsDataCatalog", Schema: "udp-spec",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0]["_col0"])

	require.NotNil(t, fake.startInput.QueryExecutionContext)
	assert.Equal(t, "AwsDataCatalog", *fake.startInput.QueryExecutionContext.Catalog)
	assert.Equal(t, "udp-spec", *fake.startInput.QueryExecutionContext.Database)
	assert.Equal(t, "SELECT 1", *fake.startInput.QueryString)
	assert.NotContains(t, *fake.startInput.QueryString, "USE ")
}

func TestExecuteQuery_PollsThroughRunningToTerminal(t *testing.T) {
	fake := &fakeAthena{
		states: []types.QueryExecutionState{
			types.QueryExecutionStateQueued,
			types.QueryExecutionStateRunning,
			types.QueryExecutionStateSucceeded,
		},
		resultCols: []string{"n"},
		resultRows: [][]string{{"42"}},
	}

	rows, err := ExecuteQuery(context.Background(), fake, AthenaQuery{SQL: "SELECT 42", Workgroup: "primary"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "42", rows[0]["n"])
	assert.Equal(t, 2, fake.pollCount)
}

func TestExecuteQuery_FailedStateReturnsUpstreamError(t *testing.T) {
	fake := &fakeAthena{states: []types.QueryExecutionState{types.QueryExecutionStateFailed}}
	_, err := ExecuteQuery(context.Background(), fake, AthenaQuery{SQL: "SELECT x", Workgroup: "primary"})
	require.Error(t, err)
}

func TestExecuteQuery_CancelledStateReturnsConflict(t *testing.T) {
	fake := &fakeAthena{states: []types.QueryExecutionState{types.QueryExecutionStateCancelled}}
	_, err := ExecuteQuery(context.Background(), fake, AthenaQuery{SQL: "SELECT x", Workgroup: "primary"})
	require.Error(t, err)
}
