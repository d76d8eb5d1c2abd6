package awsdata

import (
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	"github.com/quiltdata/quiltmcp/internal/apperr"
)

type fakeAPIError struct {
	code string
	msg  string
}

func (e fakeAPIError) Error() string       { return e.code + ": " + e.msg }
func (e fakeAPIError) ErrorCode() string    { return e.code }
func (e fakeAPIError) ErrorMessage() string { return e.msg }
func (e fakeAPIError) ErrorFault() smithy.ErrorFault {
	return smithy.FaultUnknown
}

func TestMapS3Error_DistinguishesVersionAndAccessErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"no such key", fakeAPIError{code: "NoSuchKey"}, apperr.NotFound},
		{"no such version", fakeAPIError{code: "NoSuchVersion"}, apperr.NotFound},
		{"invalid version id", fakeAPIError{code: "InvalidArgument", msg: "Invalid version id specified"}, apperr.ValidationFailed},
		{"access denied", fakeAPIError{code: "AccessDenied"}, apperr.PermissionDenied},
		{"unknown", fakeAPIError{code: "SlowDown"}, apperr.UpstreamUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapS3Error(tc.err)
			assert.Equal(t, tc.want, apperr.As(got).Kind)
		})
	}
}

func TestMapS3Error_NilIsNil(t *testing.T) {
	assert.NoError(t, mapS3Error(nil))
}

func TestMapS3Error_WrapsNonAPIError(t *testing.T) {
	got := mapS3Error(errors.New("connection reset"))
	assert.Equal(t, apperr.UpstreamUnavailable, apperr.As(got).Kind)
}

func TestKeyFromURI(t *testing.T) {
	bucket, key, ok := KeyFromURI("s3://my-bucket/path/to/object.csv")
	assert.True(t, ok)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "path/to/object.csv", key)

	_, _, ok = KeyFromURI("https://example.com/object.csv")
	assert.False(t, ok)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "object.csv", BaseName("path/to/object.csv"))
}
