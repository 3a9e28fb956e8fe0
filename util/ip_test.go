package util

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ipBoolTestCase struct {
	ip  string
	out bool
	msg string
}

type parseSubnetsTestCase struct {
	nets    []string
	out     []*net.IPNet
	wantErr bool
	msg     string
}

func TestIPIsPublicRoutable(t *testing.T) {

	testCases := []ipBoolTestCase{
		{"10.1.2.3", false, "RFC1918 Class A"},
		{"172.16.1.2", false, "RFC1918 Class B"},
		{"192.168.1.2", false, "RFC1918 Class C"},
		{"100.64.0.1", false, "carrier grade NAT"},
		{"fc00:1234::", false, "IPv6 local address"},
		{"127.0.0.5", false, "IPv4 loopback"},
		{"::1", false, "IPv6 loopback"},
		{"169.254.1.2", false, "IPv4 link local"},
		{"fe80:1234::", false, "IPv6 link local"},
		{"224.0.0.1", false, "IPv4 multicast"},
		{"ff12:1234::", false, "IPv6 multicast"},
		{"0.0.0.0", false, "IPv4 unspecified"},
		{"8.8.8.8", true, "google dns ipv4"},
		{"172.217.3.110", true, "public address inside 172. prefix"},
		{"2001:4860:4860::8888", true, "google dns ipv6"},
	}

	for _, testCase := range testCases {
		output := IPIsPubliclyRoutable(net.ParseIP(testCase.ip))
		assert.Equal(t, testCase.out, output, testCase.msg)
	}

	assert.False(t, IPIsPubliclyRoutable(nil), "unparsable address")
}

func TestHasAnyPrefix(t *testing.T) {
	prefixes := []string{"10.", "172.", "192.", "127."}

	testCases := []ipBoolTestCase{
		{"10.0.0.2", true, "class A private"},
		{"172.217.3.110", true, "coarse match catches public 172. addresses"},
		{"192.0.2.1", true, "coarse match catches documentation range"},
		{"127.0.0.1", true, "loopback"},
		{"203.0.113.5", false, "public address"},
		{"110.1.1.1", false, "prefix must match from the start"},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.out, HasAnyPrefix(testCase.ip, prefixes), testCase.msg)
	}
	assert.False(t, HasAnyPrefix("10.0.0.1", nil), "no prefixes configured")
}

func TestStripPort(t *testing.T) {
	assert.Equal(t, "203.0.113.5", StripPort("203.0.113.5:443"))
	assert.Equal(t, "203.0.113.5", StripPort("203.0.113.5"))
	assert.Equal(t, "2001", StripPort("2001:db8::1:443"))
	assert.Equal(t, "", StripPort(":80"))
}

// Ensures ParseSubnets returns expected net.IPNets and returns
// error when invalid IP address/CIDR network is provided.
func TestParseSubnets(t *testing.T) {
	validNets := []string{"192.168.0.0/24", "2001:db8::/32", "192.168.0.1", "2001:db8::1"}
	validNetsOutput := createIPNets([]string{"192.168.0.0/24", "2001:db8::/32", "192.168.0.1/32", "2001:db8::1/128"})
	invalidNets := []string{"invalidIP", "300.0.0.0/24"}

	testCases := []parseSubnetsTestCase{
		{
			nets:    validNets,
			out:     validNetsOutput,
			wantErr: false,
			msg:     "Valid mixed subnets",
		},
		{
			nets:    invalidNets,
			out:     nil,
			wantErr: true,
			msg:     "Invalid subnets (Expecting Error)",
		},
	}

	for _, testCase := range testCases {
		output, err := ParseSubnets(testCase.nets)
		assert.Equal(t, testCase.out, output, testCase.msg)
		assert.Equal(t, testCase.wantErr, err != nil, testCase.msg)
	}
}

func TestContainsIP(t *testing.T) {
	subnets, err := ParseSubnets([]string{"8.8.4.4/32", "203.0.113.0/24"})
	require.Nil(t, err)

	assert.True(t, ContainsIP(subnets, net.ParseIP("8.8.4.4")))
	assert.True(t, ContainsIP(subnets, net.ParseIP("203.0.113.77")))
	assert.False(t, ContainsIP(subnets, net.ParseIP("8.8.8.8")))
}

func createIPNets(cidr []string) []*net.IPNet {
	ipNets := make([]*net.IPNet, len(cidr))

	for i, ip := range cidr {
		_, ipNet, _ := net.ParseCIDR(ip)
		ipNets[i] = ipNet
	}

	return ipNets
}
