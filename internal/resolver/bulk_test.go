package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkProcess(t *testing.T) {
	mock := newMockExchanger()
	for _, domain := range []string{"one.example.com.", "two.example.com."} {
		authAddr := scriptComHierarchy(mock, domain, dns.TypeA)
		mock.on(authAddr, domain, dns.TypeA, mockReply{
			answer: []dns.RR{aRR(domain, "203.0.113.10")},
		})
	}
	// broken.example.com is unscripted past the tld and times out
	scriptComHierarchy(mock, "broken.example.com.", dns.TypeA)

	r := NewWithExchanger(testOptions("198.41.0.4"), mock)
	processor := NewBulkProcessor(r, 2)

	var progress int
	processor.SetProgressCallback(func(current, total int, domain string, status Status) {
		progress++
	})

	summary, err := processor.Process(context.Background(),
		[]string{"one.example.com", "two.example.com", "broken.example.com"}, RecordTypeA)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalDomains)
	assert.Equal(t, 2, summary.Answered)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 3, progress)
	assert.Len(t, summary.Results, 3)
}

func TestReadDomainsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.txt")
	content := "# comment\nexample.com\n\n  other.example.org  \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	domains, err := ReadDomainsFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", "other.example.org"}, domains)
}

func TestReadDomainsFromFileRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a domain!\n"), 0o644))

	_, err := ReadDomainsFromFile(path)
	require.Error(t, err)
}

func TestIsValidDomain(t *testing.T) {
	cases := []struct {
		domain string
		valid  bool
	}{
		{"example.com", true},
		{"sub.example.com.", true},
		{"no-dots", false},
		{"", false},
		{"-leading.example.com", false},
		{"spaces in.example.com", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.valid, IsValidDomain(tc.domain), tc.domain)
	}
}
