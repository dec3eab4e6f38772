package event

const (
	NameLinkCreated      = "link.created"
	NameLinkVisited      = "link.visited"
	NameLinkDeleted      = "link.deleted"
	NameMilestoneReached = "link.milestone_reached"
)

// Names lists every event name published by the service.
var Names = []string{NameLinkCreated, NameLinkVisited, NameLinkDeleted, NameMilestoneReached}

// LinkCreated is raised once a link and its empty visit log are stored.
type LinkCreated struct {
	Base
	LinkID    int64  `json:"link_id"`
	OwnerID   string `json:"owner_id"`
	OriginURL string `json:"origin_url"`
	Generated bool   `json:"generated"`
}

func NewLinkCreated(linkID int64, key, ownerID, originURL string, generated bool) LinkCreated {
	return LinkCreated{
		Base:      NewBase(key),
		LinkID:    linkID,
		OwnerID:   ownerID,
		OriginURL: originURL,
		Generated: generated,
	}
}

func (e LinkCreated) EventName() string {
	return NameLinkCreated
}

// LinkVisited is raised after a visit was appended and the click count incremented.
type LinkVisited struct {
	Base
	LinkID     int64  `json:"link_id"`
	ClickCount int64  `json:"click_count"`
	Device     string `json:"device"`
	Country    string `json:"country"`
}

func NewLinkVisited(linkID int64, key string, clickCount int64, device, country string) LinkVisited {
	return LinkVisited{
		Base:       NewBase(key),
		LinkID:     linkID,
		ClickCount: clickCount,
		Device:     device,
		Country:    country,
	}
}

func (e LinkVisited) EventName() string {
	return NameLinkVisited
}

// LinkDeleted is raised after a link and its visit log were removed together.
type LinkDeleted struct {
	Base
	LinkID  int64  `json:"link_id"`
	OwnerID string `json:"owner_id"`
}

func NewLinkDeleted(linkID int64, key, ownerID string) LinkDeleted {
	return LinkDeleted{
		Base:    NewBase(key),
		LinkID:  linkID,
		OwnerID: ownerID,
	}
}

func (e LinkDeleted) EventName() string {
	return NameLinkDeleted
}

// ClickMilestoneReached is raised when a link's click count crosses a milestone.
type ClickMilestoneReached struct {
	Base
	Milestone  int64 `json:"milestone"`
	ClickCount int64 `json:"click_count"`
}

// Milestones are the click counts that trigger ClickMilestoneReached.
var Milestones = []int64{10, 100, 1000, 10000, 100000}

func NewClickMilestoneReached(key string, milestone, clickCount int64) ClickMilestoneReached {
	return ClickMilestoneReached{
		Base:       NewBase(key),
		Milestone:  milestone,
		ClickCount: clickCount,
	}
}

func (e ClickMilestoneReached) EventName() string {
	return NameMilestoneReached
}

// CheckMilestone returns the milestone crossed when the count moved from
// previousCount to currentCount, or 0.
func CheckMilestone(previousCount, currentCount int64) int64 {
	for _, milestone := range Milestones {
		if previousCount < milestone && currentCount >= milestone {
			return milestone
		}
	}
	return 0
}
