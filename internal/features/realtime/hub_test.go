package realtime

import (
	"testing"

	"eic-admin/internal/features/role"
	"eic-admin/pkg/syncache"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBroadcastReachesClients(t *testing.T) {
	h := NewHub(zap.NewNop())
	a, b := h.Register(EntityRoles), h.Register(EntityRoles, EntityUsers)

	h.Broadcast(Message{Entity: EntityRoles, Kind: syncache.EventRemoved, ID: "inspector_lead"})

	require.Equal(t, "inspector_lead", (<-a.Send).ID)
	require.Equal(t, "inspector_lead", (<-b.Send).ID)
}

func TestSlowClientIsDropped(t *testing.T) {
	h := NewHub(zap.NewNop())
	h.buffer = 1
	slow := h.Register(EntityUsers)

	h.Broadcast(Message{Entity: EntityUsers, Kind: syncache.EventReplaced})
	h.Broadcast(Message{Entity: EntityUsers, Kind: syncache.EventReplaced})

	require.Zero(t, h.Len())
	_, ok := <-slow.Send
	require.True(t, ok)
	_, ok = <-slow.Send
	require.False(t, ok)
}

func TestUnregisterTwice(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := h.Register(EntityRoles)
	h.Unregister(c)
	h.Unregister(c)
	require.Zero(t, h.Len())
}

func TestToMessageCarriesUpsertedItem(t *testing.T) {
	msg := toMessage(EntityRoles, syncache.Event[role.Role]{Kind: syncache.EventUpserted, ID: "admin", Item: role.Role{ID: "admin"}})
	require.Equal(t, role.Role{ID: "admin"}, msg.Data)

	msg = toMessage(EntityRoles, syncache.Event[role.Role]{Kind: syncache.EventRemoved, ID: "admin"})
	require.Nil(t, msg.Data)
}

func TestCloseDisconnectsClients(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := h.Register(EntityUsers)
	h.Close()

	_, ok := <-c.Send
	require.False(t, ok)
	require.Zero(t, h.Len())
}

func TestBroadcastSkipsEntitiesTheClientCannotRead(t *testing.T) {
	h := NewHub(zap.NewNop())
	rolesOnly := h.Register(EntityRoles)
	both := h.Register(EntityRoles, EntityUsers)

	h.Broadcast(Message{Entity: EntityUsers, Kind: syncache.EventUpserted, ID: "u1", Data: "secret"})
	h.Broadcast(Message{Entity: EntityRoles, Kind: syncache.EventRemoved, ID: "inspector_lead"})

	require.Equal(t, "u1", (<-both.Send).ID)
	require.Equal(t, "inspector_lead", (<-both.Send).ID)
	require.Equal(t, "inspector_lead", (<-rolesOnly.Send).ID)
	require.Empty(t, rolesOnly.Send)
	require.Equal(t, 2, h.Len())
}
