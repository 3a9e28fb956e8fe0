package scan

import (
	"net"

	"github.com/activecm/connlog/config"
	"github.com/activecm/connlog/util"
)

// filter decides which observed addresses are worth logging
type filter struct {
	nonPublicPrefixes []string
	strict            bool
	neverIncluded     []*net.IPNet
}

func newFilter(conf *config.Config) *filter {
	return &filter{
		nonPublicPrefixes: conf.S.Scan.NonPublicPrefixes,
		strict:            conf.S.Scan.StrictPublicFilter,
		neverIncluded:     conf.R.Scan.NeverInclude,
	}
}

// isPublic applies the prefix filter, then the optional routability and
// never include checks
func (f *filter) isPublic(address string) bool {
	if address == "" || util.HasAnyPrefix(address, f.nonPublicPrefixes) {
		return false
	}

	if !f.strict && len(f.neverIncluded) == 0 {
		return true
	}

	ip := net.ParseIP(address)
	if f.strict && !util.IPIsPubliclyRoutable(ip) {
		return false
	}
	if ip != nil && util.ContainsIP(f.neverIncluded, ip) {
		return false
	}
	return true
}
