package session

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Store persists cookies and credentials into the studypacer config file.
// Saves merge over the existing file so unrelated settings survive.
type Store struct {
	path string
}

// NewStore creates a Store writing to the given config file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// SaveCookies writes the cookie set into the config file. Cookies are stored
// as sorted "name=value" strings: Viper lowercases map keys on read, which
// would mangle case-sensitive names like ASP.NET_SessionId.
func (s *Store) SaveCookies(cookies map[string]string) error {
	pairs := make([]string, 0, len(cookies))
	for name, value := range cookies {
		pairs = append(pairs, name+"="+value)
	}
	sort.Strings(pairs)
	return s.merge(func(v *viper.Viper) {
		v.Set("cookies", pairs)
	})
}

// ParseCookies converts the stored "name=value" strings back into a map.
func ParseCookies(pairs []string) map[string]string {
	cookies := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			continue
		}
		cookies[name] = value
	}
	return cookies
}

// SaveCredentials records the username/password pair for later logins.
func (s *Store) SaveCredentials(username, password string) error {
	return s.merge(func(v *viper.Viper) {
		v.Set("username", username)
		v.Set("password", password)
	})
}

func (s *Store) merge(apply func(*viper.Viper)) error {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	// A missing or unreadable file starts from an empty document; the
	// write below (re)creates it.
	_ = v.ReadInConfig()
	apply(v)
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write config %s: %w", s.path, err)
	}
	return nil
}
