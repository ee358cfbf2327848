package court

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyName     = errors.New("court name cannot be empty")
	ErrInvalidStatus = errors.New("invalid court status")
	ErrNotBookable   = errors.New("court is not bookable")
)

type Court struct {
	id        uuid.UUID
	name      string
	areaID    *uuid.UUID
	status    Status
	rules     []PricingRule
	createdAt time.Time
	updatedAt time.Time
}

func NewCourt(id uuid.UUID, name string, areaID *uuid.UUID, status Status) (*Court, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	return &Court{
		id:     id,
		name:   name,
		areaID: areaID,
		status: status,
	}, nil
}

func ReconstructCourt(
	id uuid.UUID,
	name string,
	areaID *uuid.UUID,
	status Status,
	rules []PricingRule,
	createdAt, updatedAt time.Time,
) *Court {
	return &Court{
		id:        id,
		name:      name,
		areaID:    areaID,
		status:    status,
		rules:     rules,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (c *Court) IsBookable() bool {
	return c.status == StatusActive
}

func (c *Court) EnsureBookable() error {
	if !c.IsBookable() {
		return ErrNotBookable
	}
	return nil
}

func (c *Court) AddRule(rule PricingRule) {
	c.rules = append(c.rules, rule)
}

func (c *Court) ID() uuid.UUID        { return c.id }
func (c *Court) Name() string         { return c.name }
func (c *Court) AreaID() *uuid.UUID   { return c.areaID }
func (c *Court) Status() Status       { return c.status }
func (c *Court) Rules() []PricingRule { return c.rules }
func (c *Court) CreatedAt() time.Time { return c.createdAt }
func (c *Court) UpdatedAt() time.Time { return c.updatedAt }
