package editors

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
)

// AddonStatus is the review status shared by add-ons and their files.
type AddonStatus int

const (
	StatusNull             AddonStatus = 0
	StatusUnreviewed       AddonStatus = 1
	StatusPending          AddonStatus = 2
	StatusNominated        AddonStatus = 3
	StatusPublic           AddonStatus = 4
	StatusDisabled         AddonStatus = 5
	StatusLite             AddonStatus = 8
	StatusLiteAndNominated AddonStatus = 9
)

var statusNames = map[AddonStatus]string{
	StatusNull:             "incomplete",
	StatusUnreviewed:       "unreviewed",
	StatusPending:          "pending",
	StatusNominated:        "nominated",
	StatusPublic:           "public",
	StatusDisabled:         "disabled",
	StatusLite:             "lite",
	StatusLiteAndNominated: "lite_and_nominated",
}

// String returns the status name
func (s AddonStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// AddonType classifies an add-on.
type AddonType int

const (
	AddonTypeExtension  AddonType = 1
	AddonTypeTheme      AddonType = 2
	AddonTypeDictionary AddonType = 3
	AddonTypeSearch     AddonType = 4
	AddonTypeLPApp      AddonType = 5
	AddonTypePersona    AddonType = 9
)

// AddonTypeNames maps add-on types to display names.
var AddonTypeNames = map[AddonType]string{
	AddonTypeExtension:  "Extension",
	AddonTypeTheme:      "Theme",
	AddonTypeDictionary: "Dictionary",
	AddonTypeSearch:     "Search Tool",
	AddonTypeLPApp:      "Language Pack (Application)",
	AddonTypePersona:    "Persona",
}

// Platform identifies the operating system a file targets.
type Platform int

const (
	PlatformAll     Platform = 1
	PlatformLinux   Platform = 2
	PlatformMac     Platform = 3
	PlatformWindows Platform = 5
	PlatformAndroid Platform = 7
)

// PlatformNames maps platforms to display names.
var PlatformNames = map[Platform]string{
	PlatformAll:     "All Platforms",
	PlatformLinux:   "Linux",
	PlatformMac:     "Mac OS X",
	PlatformWindows: "Windows",
	PlatformAndroid: "Android",
}

// Application ids of the products add-ons can target.
const (
	AppFirefox     = 1
	AppThunderbird = 18
	AppSunbird     = 52
	AppSeaMonkey   = 59
	AppMobile      = 60
	AppAndroid     = 61
)

// ApplicationNames maps application ids to display names.
var ApplicationNames = map[int]string{
	AppFirefox:     "Firefox",
	AppThunderbird: "Thunderbird",
	AppSunbird:     "Sunbird",
	AppSeaMonkey:   "SeaMonkey",
	AppMobile:      "Mobile",
	AppAndroid:     "Android",
}

// Addon is an add-on listed on the marketplace.
type Addon struct {
	shared.BaseEntity
	Name            string
	Type            AddonType
	Status          AddonStatus
	AdminReview     bool
	SiteSpecific    bool
	DisabledByUser  bool
	LatestVersionID *uuid.UUID
}

// IsNominated reports whether the add-on waits for a full review.
func (a *Addon) IsNominated() bool {
	return a.Status == StatusNominated || a.Status == StatusLiteAndNominated
}

// Version is one uploaded version of an add-on.
type Version struct {
	shared.BaseEntity
	AddonID     uuid.UUID
	Version     string
	NominatedAt *time.Time
	Files       []File
	Apps        []VersionApplication
}

// FileIDs returns the ids of the version's files.
func (v *Version) FileIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(v.Files))
	for _, f := range v.Files {
		ids = append(ids, f.ID)
	}
	return ids
}

// File is a platform-specific package of a version.
type File struct {
	shared.BaseEntity
	VersionID uuid.UUID
	Platform  Platform
	Filename  string
	Status    AddonStatus
}

// VersionApplication records which application versions a version supports.
type VersionApplication struct {
	ApplicationID int
	MinVersion    string
	MaxVersion    string
}

// AppVersion is a known release of an application.
type AppVersion struct {
	ApplicationID int
	Version       string
}
