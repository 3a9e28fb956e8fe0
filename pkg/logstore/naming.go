package logstore

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/activecm/connlog/config"
	"github.com/google/uuid"
)

const (
	idChunks    = 5
	idChunkSize = 3
	idChunkMax  = 999
)

var (
	randomIDPattern = regexp.MustCompile(`^\d{3}(-\d{3}){4}$`)
	uuidPattern     = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// Namer generates and recognizes scan log file names
type Namer struct {
	dir       string
	prefix    string
	extension string
	scheme    config.FileIDScheme
	rand      *rand.Rand
}

// NewNamer builds a Namer from the storage settings
func NewNamer(conf *config.Config, rnd *rand.Rand) *Namer {
	return &Namer{
		dir:       conf.S.Storage.Directory,
		prefix:    conf.S.Storage.FilePrefix,
		extension: conf.S.Storage.FileExtension,
		scheme:    conf.R.Storage.IDScheme,
		rand:      rnd,
	}
}

// Dir returns the directory scan logs are written to
func (n *Namer) Dir() string { return n.dir }

// Next returns the path of a new scan log
func (n *Namer) Next() string {
	return filepath.Join(n.dir, n.prefix+n.newID()+n.extension)
}

func (n *Namer) newID() string {
	if n.scheme == config.IDUUID {
		return uuid.New().String()
	}

	chunks := make([]string, idChunks)
	for i := range chunks {
		chunks[i] = fmt.Sprintf("%0*d", idChunkSize, n.rand.Intn(idChunkMax+1))
	}
	return strings.Join(chunks, "-")
}

// IsLogFile reports whether name (a base file name) follows the configured
// scheme
func (n *Namer) IsLogFile(name string) bool {
	if !strings.HasPrefix(name, n.prefix) || !strings.HasSuffix(name, n.extension) {
		return false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, n.prefix), n.extension)
	if n.scheme == config.IDUUID {
		return uuidPattern.MatchString(id)
	}
	return randomIDPattern.MatchString(id)
}
