package messaging_test

import (
	"testing"
	"time"

	"github.com/hilthontt/melody/internal/infrastructure/messaging"
	"github.com/hilthontt/melody/internal/infrastructure/messaging/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestChannel(t *testing.T, broker *memory.Broker) messaging.Channel {
	t.Helper()

	conn, err := broker.Dial("", time.Second)
	require.NoError(t, err)
	ch, err := conn.Channel()
	require.NoError(t, err)

	t.Cleanup(func() {
		ch.Close()
		conn.Close()
	})
	return ch
}

func TestDeclareTopology_Idempotent(t *testing.T) {
	broker := memory.NewBroker()
	ch := openTestChannel(t, broker)
	declarer := messaging.NewTopologyDeclarer()
	topo := testTopology("auth.user.registered", "catalog.#", "playback.track.finished")

	require.NoError(t, declarer.DeclareTopology(ch, topo))
	require.NoError(t, declarer.DeclareTopology(ch, topo))

	assert.Equal(t, []string{"auth.user.registered", "catalog.#", "playback.track.finished"},
		broker.Bindings(testExchange, testQueue))

	require.NoError(t, broker.Publish(testExchange, "auth.user.registered", []byte(`{"user_id":"u1"}`)))
	assert.Equal(t, 1, broker.Ready(testQueue), "no duplicate bindings")
}

func TestDeclareTopology_DeadLetter(t *testing.T) {
	broker := memory.NewBroker()
	ch := openTestChannel(t, broker)
	topo := testTopology("library.#")
	topo.DeadLetterExchange = "music.events.dlx"

	require.NoError(t, messaging.NewTopologyDeclarer().DeclareTopology(ch, topo))

	kind, ok := broker.ExchangeKind("music.events.dlx")
	require.True(t, ok)
	assert.Equal(t, "fanout", kind)

	args, ok := broker.QueueArgs(testQueue)
	require.True(t, ok)
	assert.Equal(t, "music.events.dlx", args["x-dead-letter-exchange"])

	_, ok = broker.QueueArgs(testQueue + ".dead")
	assert.True(t, ok)
	assert.Equal(t, testQueue+".dead", topo.DeadLetterQueue())
}

func TestTopology_Validate(t *testing.T) {
	tests := []struct {
		name string
		topo messaging.Topology
	}{
		{"missing exchange", messaging.Topology{Queue: "q", BindingKeys: []string{"a.b"}}},
		{"missing queue", messaging.Topology{Exchange: "x", BindingKeys: []string{"a.b"}}},
		{"no bindings", messaging.Topology{Exchange: "x", Queue: "q"}},
		{"bad pattern", messaging.Topology{Exchange: "x", Queue: "q", BindingKeys: []string{"catalog.tr*"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.topo.Validate())
		})
	}

	assert.NoError(t, testTopology("catalog.*.published").Validate())
}
