package ticketing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganisationKeyFromSlug(t *testing.T) {
	o := &Organisation{Name: "The Organisation"}
	key := o.EntityKey()
	assert.Equal(t, "ORG#the-organisation", key.PK)
	assert.Equal(t, key.PK, key.SK)
}

func TestOrganisationRoundTrip(t *testing.T) {
	o := &Organisation{
		Name:      "The Organisation",
		Email:     "hello@example.com",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	o.SetVersion(2)

	var got Organisation
	require.NoError(t, got.Hydrate(mustRecord(t, o)))
	assert.Equal(t, o.Name, got.Name)
	assert.Equal(t, o.Email, got.Email)
	assert.Equal(t, o.CreatedAt, got.CreatedAt)
	assert.Equal(t, int64(2), got.Version())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusDraft.Valid())
	assert.True(t, StatusIssued.Valid())
	assert.False(t, Status("cancelled").Valid())
}

func TestCustomerRoundTrip(t *testing.T) {
	c := &Customer{ID: "cus1", Email: "ada@example.com", Name: "Ada"}
	c.SetVersion(1)

	key := c.EntityKey()
	assert.Equal(t, "CUSTOMER#cus1", key.PK)
	assert.Equal(t, key.PK, key.SK)

	var got Customer
	require.NoError(t, got.Hydrate(mustRecord(t, c)))
	assert.Equal(t, c.Email, got.Email)
	assert.Equal(t, int64(1), got.Version())
}

func TestTicketChildKey(t *testing.T) {
	c := &TicketChild{ID: "ch1", TicketID: "tk1"}
	key := c.EntityKey()
	assert.Equal(t, "TICKETCHILD#ch1", key.PK)
	assert.Equal(t, "TICKET#tk1", key.SK)
}
