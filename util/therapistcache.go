package util

import (
	"errors"
	"strconv"
	"time"

	"github.com/ariebrainware/aba-tracker/model"
	cache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// ErrNoTherapistProfile is returned when a therapist account has no profile row.
var ErrNoTherapistProfile = errors.New("no therapist profile for user")

// userID -> therapist id. Profiles are never re-linked, so entries only expire.
var therapistCache = cache.New(30*time.Minute, 10*time.Minute)

func therapistCacheKey(userID uint) string {
	return "therapist:" + strconv.FormatUint(uint64(userID), 10)
}

// ResolveTherapistID returns the therapist profile id linked to userID,
// consulting the in-process cache before the database.
func ResolveTherapistID(db *gorm.DB, userID uint) (uint, error) {
	key := therapistCacheKey(userID)
	if v, ok := therapistCache.Get(key); ok {
		if id, ok := v.(uint); ok {
			return id, nil
		}
	}

	var therapist model.Therapist
	err := db.Select("id").Where("user_id = ?", userID).Take(&therapist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNoTherapistProfile
	}
	if err != nil {
		return 0, err
	}
	therapistCache.Set(key, therapist.ID, cache.DefaultExpiration)
	return therapist.ID, nil
}

// FlushTherapistCache empties the cache. Tests use it between databases.
func FlushTherapistCache() {
	therapistCache.Flush()
}
