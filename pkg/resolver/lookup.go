package resolver

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/activecm/connlog/util"
	jsoniter "github.com/json-iterator/go"
)

// maxBodyBytes bounds how much of a lookup response is read
const maxBodyBytes = 1 << 20

// Lookup maps an address to the name of the organization that owns it
type Lookup interface {
	Lookup(ctx context.Context, address string) (string, error)
}

// ResolutionError is returned when an address cannot be resolved
type ResolutionError struct {
	Address string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving %s: %v", e.Address, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// lookupResponse is the part of the lookup api body we care about
type lookupResponse struct {
	Connection *struct {
		Org *string `json:"org"`
	} `json:"connection"`
}

// HTTPLookup queries a whois style web api with GET <baseURL><address>
type HTTPLookup struct {
	baseURL string
	client  *http.Client
}

// NewHTTPLookup returns a lookup against baseURL. A zero timeout waits forever.
func NewHTTPLookup(baseURL string, timeout time.Duration) *HTTPLookup {
	return &HTTPLookup{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Lookup fetches the organization name for address from the connection.org
// field of the response
func (l *HTTPLookup) Lookup(ctx context.Context, address string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+address, nil)
	if err != nil {
		return "", &ResolutionError{Address: address, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", &ResolutionError{Address: address, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ResolutionError{Address: address, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &ResolutionError{Address: address, Err: err}
	}

	var parsed lookupResponse
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(body, &parsed); err != nil {
		return "", &ResolutionError{Address: address, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if parsed.Connection == nil || parsed.Connection.Org == nil {
		return "", &ResolutionError{Address: address, Err: fmt.Errorf("response has no connection.org field")}
	}
	return *parsed.Connection.Org, nil
}

// ReverseLookup names addresses through reverse DNS. Results, including
// misses, are cached for the life of the lookup.
type ReverseLookup struct {
	resolver *net.Resolver
	cache    util.NameCache
}

// NewReverseLookup returns a reverse DNS namer using the system resolver
func NewReverseLookup() *ReverseLookup {
	return &ReverseLookup{
		resolver: net.DefaultResolver,
		cache:    util.NewNameCache(),
	}
}

// Name returns the first PTR name for address without its trailing dot, or
// address itself when the lookup fails
func (r *ReverseLookup) Name(ctx context.Context, address string) string {
	if name, ok := r.cache.Lookup(address); ok {
		return name
	}

	name := address
	names, err := r.resolver.LookupAddr(ctx, address)
	if err == nil && len(names) > 0 && names[0] != "" {
		name = strings.TrimSuffix(names[0], ".")
	}

	r.cache.Store(address, name)
	return name
}
