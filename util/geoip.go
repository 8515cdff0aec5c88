package util

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/oschwald/geoip2-golang"
	cache "github.com/patrickmn/go-cache"
)

var (
	geoipMu    sync.RWMutex
	geoipDB    *geoip2.Reader
	geoipCache = cache.New(24*time.Hour, time.Hour)
)

// IPLocation is the resolved city and country of an address.
type IPLocation struct {
	City    string
	Country string
}

// InitGeoIP opens a GeoIP2/GeoLite2 .mmdb file. An empty path disables lookups.
func InitGeoIP(dbPath string) error {
	if dbPath == "" {
		return nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open geoip db: %w", err)
	}
	geoipMu.Lock()
	geoipDB = r
	geoipMu.Unlock()
	return nil
}

// CloseGeoIP closes the GeoIP DB if opened.
func CloseGeoIP() {
	geoipMu.Lock()
	defer geoipMu.Unlock()
	if geoipDB != nil {
		_ = geoipDB.Close()
		geoipDB = nil
	}
}

// GetIPLocation resolves ip using the local GeoIP database, caching results.
// Private, loopback and unparsable addresses resolve to an empty location.
func GetIPLocation(ip string) IPLocation {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return IPLocation{}
	}

	if v, ok := geoipCache.Get(ip); ok {
		if loc, ok := v.(IPLocation); ok {
			return loc
		}
	}

	geoipMu.RLock()
	reader := geoipDB
	geoipMu.RUnlock()
	if reader == nil {
		return IPLocation{}
	}

	rec, err := reader.City(parsed)
	if err != nil {
		return IPLocation{}
	}
	loc := IPLocation{City: rec.City.Names["en"], Country: rec.Country.Names["en"]}
	if loc.Country == "" {
		loc.Country = rec.Country.IsoCode
	}
	geoipCache.Set(ip, loc, cache.DefaultExpiration)
	return loc
}

// FormatLocation renders a location as "City/Country", or whichever part is known.
func FormatLocation(loc IPLocation) string {
	switch {
	case loc.City != "" && loc.Country != "":
		return loc.City + "/" + loc.Country
	case loc.Country != "":
		return loc.Country
	default:
		return loc.City
	}
}
