package assemble

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// eventTypes maps every known event keyword to its base type.
var eventTypes = map[string]BaseType{
	// transportation
	"flight":    BaseTransportation,
	"plane":     BaseTransportation,
	"train":     BaseTransportation,
	"bus":       BaseTransportation,
	"coach":     BaseTransportation,
	"ferry":     BaseTransportation,
	"boat":      BaseTransportation,
	"ship":      BaseTransportation,
	"cruise":    BaseTransportation,
	"car":       BaseTransportation,
	"drive":     BaseTransportation,
	"taxi":      BaseTransportation,
	"rideshare": BaseTransportation,
	"subway":    BaseTransportation,
	"metro":     BaseTransportation,
	"tram":      BaseTransportation,
	"shuttle":   BaseTransportation,
	"transfer":  BaseTransportation,
	"walk":      BaseTransportation,
	"bike":      BaseTransportation,
	"cycle":     BaseTransportation,

	// stay
	"stay":       BaseStay,
	"hotel":      BaseStay,
	"hostel":     BaseStay,
	"lodging":    BaseStay,
	"airbnb":     BaseStay,
	"guesthouse": BaseStay,
	"inn":        BaseStay,
	"ryokan":     BaseStay,
	"camp":       BaseStay,
	"camping":    BaseStay,
	"apartment":  BaseStay,

	// activity
	"activity":    BaseActivity,
	"sightseeing": BaseActivity,
	"sight":       BaseActivity,
	"tour":        BaseActivity,
	"museum":      BaseActivity,
	"hike":        BaseActivity,
	"beach":       BaseActivity,
	"shopping":    BaseActivity,
	"meal":        BaseActivity,
	"food":        BaseActivity,
	"breakfast":   BaseActivity,
	"brunch":      BaseActivity,
	"lunch":       BaseActivity,
	"dinner":      BaseActivity,
	"cafe":        BaseActivity,
	"bar":         BaseActivity,
	"meeting":     BaseActivity,
	"concert":     BaseActivity,
	"show":        BaseActivity,
	"spa":         BaseActivity,
}

// knownEventTypes is the sorted keyword list used for suggestions.
var knownEventTypes = func() []string {
	out := make([]string, 0, len(eventTypes))
	for k := range eventTypes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}()

// EventTypes returns the known event keywords in sorted order.
func EventTypes() []string {
	return append([]string(nil), knownEventTypes...)
}

// LookupEventType returns the base type of a keyword.
func LookupEventType(keyword string) (BaseType, bool) {
	b, ok := eventTypes[strings.ToLower(keyword)]
	return b, ok
}

// suggestEventType returns the best fuzzy match for an unknown keyword.
func suggestEventType(keyword string) string {
	matches := fuzzy.Find(strings.ToLower(keyword), knownEventTypes)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}
