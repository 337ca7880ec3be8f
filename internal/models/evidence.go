package models

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/myrjola/entangled/internal/errors"
)

// Sentinel errors for the engine's failure taxonomy. HTTP handlers map these
// to 404 (not found), 409 (conflict), and 422 (invalid connection).
var (
	ErrNotFound          = errors.NewSentinel("not found")
	ErrConflict          = errors.NewSentinel("conflict")
	ErrInvalidConnection = errors.NewSentinel("no known link between these evidence items")
)

type EvidenceType string

const (
	EvidenceTypeChatLog      EvidenceType = "chat_log"
	EvidenceTypeDataFragment EvidenceType = "data_fragment"
	EvidenceTypeTestimony    EvidenceType = "testimony"
	EvidenceTypeAccessKey    EvidenceType = "access_key"
	EvidenceTypeTool         EvidenceType = "tool"
	EvidenceTypeCoordinates  EvidenceType = "coordinates"
)

var evidenceTypes = map[EvidenceType]bool{
	EvidenceTypeChatLog:      true,
	EvidenceTypeDataFragment: true,
	EvidenceTypeTestimony:    true,
	EvidenceTypeAccessKey:    true,
	EvidenceTypeTool:         true,
	EvidenceTypeCoordinates:  true,
}

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// rarityScores feed the XP reward for discovering a connection.
var rarityScores = map[Rarity]int{
	RarityCommon:    10,
	RarityUncommon:  15,
	RarityRare:      25,
	RarityLegendary: 50,
}

// Evidence is a collectible clue item. Content stays hidden from the player
// until the item has been examined.
type Evidence struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Type          EvidenceType      `json:"type"`
	Rarity        Rarity            `json:"rarity"`
	Content       string            `json:"content,omitempty"`
	RelevantCases []string          `json:"relevantCases,omitempty"`
	AcquiredAt    time.Time         `json:"acquiredAt"`
	Examined      bool              `json:"examined"`
	ExaminedAt    *time.Time        `json:"examinedAt,omitempty"`
	Connections   []string          `json:"connections,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Redacted returns a display copy with unexamined content hidden.
func (e Evidence) Redacted() Evidence {
	if !e.Examined {
		e.Content = ""
	}
	return e
}

func (e Evidence) valid() bool {
	if e.ID == "" || !evidenceTypes[e.Type] {
		return false
	}
	if _, ok := rarityScores[e.Rarity]; !ok {
		return false
	}
	// An unexamined item must not carry an examination timestamp.
	if !e.Examined && e.ExaminedAt != nil {
		return false
	}
	return true
}

// ConnectionReward describes what discovering a connection grants.
type ConnectionReward struct {
	XP               int    `json:"xp"`
	UnlockedEvidence string `json:"unlockedEvidence,omitempty"`
	CaseProgress     string `json:"caseProgress,omitempty"`
}

// EvidenceConnection is a discovered link between two evidence items. The pair
// is stored ordered but compared order-independently; at most one connection
// exists per unordered pair and connections are append-only.
type EvidenceConnection struct {
	EvidenceIDs  [2]string         `json:"evidenceIds"`
	DiscoveredAt time.Time         `json:"discoveredAt"`
	Insight      string            `json:"insight"`
	Reward       *ConnectionReward `json:"reward,omitempty"`
}

// Matches reports whether the connection links the unordered pair (a, b).
func (c EvidenceConnection) Matches(a, b string) bool {
	return (c.EvidenceIDs[0] == a && c.EvidenceIDs[1] == b) ||
		(c.EvidenceIDs[0] == b && c.EvidenceIDs[1] == a)
}

// EvidenceInventory is the per-user evidence ledger: collected items plus the
// graph of discovered connections.
type EvidenceInventory struct {
	Evidence    []Evidence           `json:"evidence"`
	Connections []EvidenceConnection `json:"connections"`
	LastUpdated time.Time            `json:"lastUpdated"`
}

// NewEvidenceInventory creates an empty inventory.
func NewEvidenceInventory(now time.Time) *EvidenceInventory {
	return &EvidenceInventory{
		Evidence:    []Evidence{},
		Connections: []EvidenceConnection{},
		LastUpdated: now,
	}
}

// Valid reports whether a loaded inventory document passes its structural
// shape check. Invalid documents are treated as absent by the repositories.
func (inv *EvidenceInventory) Valid() bool {
	for _, e := range inv.Evidence {
		if !e.valid() {
			return false
		}
	}
	for _, c := range inv.Connections {
		if c.EvidenceIDs[0] == "" || c.EvidenceIDs[1] == "" {
			return false
		}
	}
	return true
}

// ByID returns the evidence item with the given id.
func (inv *EvidenceInventory) ByID(id string) (*Evidence, error) {
	for i := range inv.Evidence {
		if inv.Evidence[i].ID == id {
			return &inv.Evidence[i], nil
		}
	}
	return nil, errors.Wrap(ErrNotFound, fmt.Sprintf("evidence %s not found", id), slog.String("evidence_id", id))
}

// Add appends a new evidence item. Adding a duplicate id is a conflict.
func (inv *EvidenceInventory) Add(e Evidence, now time.Time) error {
	if existing, _ := inv.ByID(e.ID); existing != nil {
		return errors.Wrap(ErrConflict, fmt.Sprintf("evidence %s already collected", e.ID), slog.String("evidence_id", e.ID))
	}
	if e.AcquiredAt.IsZero() {
		e.AcquiredAt = now
	}
	inv.Evidence = append(inv.Evidence, e)
	inv.LastUpdated = now
	return nil
}

// AddBatch appends evidence items, silently skipping ids already collected.
// It returns the items that were actually added.
func (inv *EvidenceInventory) AddBatch(items []Evidence, now time.Time) []Evidence {
	added := make([]Evidence, 0, len(items))
	for _, e := range items {
		if existing, _ := inv.ByID(e.ID); existing != nil {
			continue
		}
		if e.AcquiredAt.IsZero() {
			e.AcquiredAt = now
		}
		inv.Evidence = append(inv.Evidence, e)
		added = append(added, e)
	}
	if len(added) > 0 {
		inv.LastUpdated = now
	}
	return added
}

// Update replaces the item with the same id.
func (inv *EvidenceInventory) Update(e Evidence, now time.Time) error {
	for i := range inv.Evidence {
		if inv.Evidence[i].ID == e.ID {
			inv.Evidence[i] = e
			inv.LastUpdated = now
			return nil
		}
	}
	return errors.Wrap(ErrNotFound, fmt.Sprintf("evidence %s not found", e.ID), slog.String("evidence_id", e.ID))
}

// Remove deletes the item with the given id.
func (inv *EvidenceInventory) Remove(id string, now time.Time) error {
	for i := range inv.Evidence {
		if inv.Evidence[i].ID == id {
			inv.Evidence = append(inv.Evidence[:i], inv.Evidence[i+1:]...)
			inv.LastUpdated = now
			return nil
		}
	}
	return errors.Wrap(ErrNotFound, fmt.Sprintf("evidence %s not found", id), slog.String("evidence_id", id))
}

// ByCase returns the items relevant to the given case.
func (inv *EvidenceInventory) ByCase(caseID string) []Evidence {
	var out []Evidence
	for _, e := range inv.Evidence {
		for _, id := range e.RelevantCases {
			if id == caseID {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// GroupedByType buckets the inventory by evidence type.
func (inv *EvidenceInventory) GroupedByType() map[EvidenceType][]Evidence {
	groups := make(map[EvidenceType][]Evidence)
	for _, e := range inv.Evidence {
		groups[e.Type] = append(groups[e.Type], e)
	}
	return groups
}

// UnexaminedCount returns how many items have not been examined yet.
func (inv *EvidenceInventory) UnexaminedCount() int {
	count := 0
	for _, e := range inv.Evidence {
		if !e.Examined {
			count++
		}
	}
	return count
}

// Examine marks the item examined, revealing its content. Examining an already
// examined item keeps the original timestamp; the post-state is returned either
// way.
func (inv *EvidenceInventory) Examine(id string, now time.Time) (*Evidence, error) {
	e, err := inv.ByID(id)
	if err != nil {
		return nil, err
	}
	if !e.Examined {
		e.Examined = true
		examinedAt := now
		e.ExaminedAt = &examinedAt
		inv.LastUpdated = now
	}
	return e, nil
}

// CheckConnection applies the discovery rule for the unordered pair (idA, idB)
// without recording anything. Eligibility is authored data: one of the two
// items must name the other in its connections allowlist.
func (inv *EvidenceInventory) CheckConnection(idA, idB string) (EvidenceConnection, error) {
	var zero EvidenceConnection

	a, err := inv.ByID(idA)
	if err != nil {
		return zero, err
	}
	b, err := inv.ByID(idB)
	if err != nil {
		return zero, err
	}

	for _, c := range inv.Connections {
		if c.Matches(idA, idB) {
			return zero, errors.Wrap(ErrConflict,
				fmt.Sprintf("%s and %s are already connected", idA, idB),
				slog.String("evidence_a", idA), slog.String("evidence_b", idB))
		}
	}

	if !listsConnection(a, b.ID) && !listsConnection(b, a.ID) {
		return zero, errors.Wrap(ErrInvalidConnection,
			fmt.Sprintf("%s and %s do not connect", idA, idB),
			slog.String("evidence_a", idA), slog.String("evidence_b", idB))
	}

	xp := int(math.Floor(float64(rarityScores[a.Rarity]+rarityScores[b.Rarity]) / 2))
	reward := ConnectionReward{XP: xp}
	if caseID := sharedCase(a, b); caseID != "" {
		reward.CaseProgress = caseID
	}

	return EvidenceConnection{
		EvidenceIDs: [2]string{idA, idB},
		Insight:     insightForTypes(a.Type, b.Type),
		Reward:      &reward,
	}, nil
}

// Connect runs CheckConnection and appends the discovered connection.
func (inv *EvidenceInventory) Connect(idA, idB string, now time.Time) (*EvidenceConnection, error) {
	connection, err := inv.CheckConnection(idA, idB)
	if err != nil {
		return nil, err
	}
	connection.DiscoveredAt = now
	inv.Connections = append(inv.Connections, connection)
	inv.LastUpdated = now
	return &inv.Connections[len(inv.Connections)-1], nil
}

func listsConnection(e *Evidence, otherID string) bool {
	for _, id := range e.Connections {
		if id == otherID {
			return true
		}
	}
	return false
}

// sharedCase returns the first case id both items are relevant to, if any.
// A connection inside a case counts as progress toward that case's twist.
func sharedCase(a, b *Evidence) string {
	for _, caseA := range a.RelevantCases {
		for _, caseB := range b.RelevantCases {
			if caseA == caseB {
				return caseA
			}
		}
	}
	return ""
}

// insightTable maps a sorted evidence type pair to the insight shown when the
// two are first connected.
var insightTable = map[string]string{
	"access_key+chat_log":       "The key signature appears in the chat log's headers. Someone was let in on purpose.",
	"access_key+data_fragment":  "The key decrypts the fragment cleanly. Whoever cut this data also held the door open.",
	"chat_log+data_fragment":    "Timestamps in the fragment line up with the chat log to the second. Same session, same hands.",
	"chat_log+testimony":        "The witness quotes a phrase that only appears in this chat log. They read it, or they wrote it.",
	"coordinates+data_fragment": "The fragment's padding hides the same coordinates. The location was meant to be found.",
	"coordinates+testimony":     "The witness places someone at these exact coordinates, hours before anything was reported.",
	"data_fragment+tool":        "Tool marks in the fragment's corruption pattern. It wasn't damaged, it was edited.",
	"testimony+tool":            "The tool matches the method the witness describes, down to the order of operations.",
}

func insightForTypes(a, b EvidenceType) string {
	pair := []string{string(a), string(b)}
	sort.Strings(pair)
	if insight, ok := insightTable[pair[0]+"+"+pair[1]]; ok {
		return insight
	}
	return fmt.Sprintf("The %s and the %s describe the same event from two angles.", a, b)
}
