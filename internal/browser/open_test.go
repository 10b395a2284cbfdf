package browser

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"http://localhost:8080", "/feeds/f1", "http://localhost:8080/feeds/f1"},
		{"https://kestrel.test/", "/taxii2/api1/collections/", "https://kestrel.test/taxii2/api1/collections/"},
		{"https://kestrel.test/base", "/feeds/a%2Fb", "https://kestrel.test/base/feeds/a%2Fb"},
	}
	for _, tt := range tests {
		got, err := EndpointURL(tt.base, tt.path)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestEndpointURL_Rejects(t *testing.T) {
	_, err := EndpointURL("file:///etc", "/passwd")
	assert.Error(t, err)
	_, err = EndpointURL("http://localhost", "feeds/f1")
	assert.Error(t, err)
}

func TestOpenEndpoint(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("launcher differs on this platform")
	}
	var got []string
	orig := start
	start = func(name string, args ...string) error {
		got = append([]string{name}, args...)
		return nil
	}
	t.Cleanup(func() { start = orig })

	target, err := OpenEndpoint("http://localhost:8080", "/misp/events")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/misp/events", target)
	assert.Equal(t, target, got[len(got)-1])
}
