package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitprime-classes/internal/backend"
	"fitprime-classes/internal/schedule"
)

func decodeClass(t *testing.T, body string) backend.RawClass {
	t.Helper()
	var raw backend.RawClass
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func intPtr(v int) *int { return &v }

func TestSession_Shapes(t *testing.T) {
	buenosAires := time.FixedZone("ART", -3*60*60)
	n := New(buenosAires)

	testCases := []struct {
		name     string
		raw      string
		expected schedule.Session
	}{
		{
			name: "Mongo id, nested objects, reservation array",
			raw: `{
				"_id": "c1",
				"fecha_hora_ini": "2026-05-04T18:00:00.000Z",
				"fecha_hora_fin": "2026-05-04T19:00:00.000Z",
				"cupo": 12,
				"entrenador": {"id": "t1", "nombre": "Laura", "apellido": "Gómez", "fotoUrl": "/img/laura.png"},
				"actividad": {"_id": "a1", "nombre": "Spinning", "descripcion": "Bici fija", "imagen": "spin.jpg"},
				"reservas": [
					{"id": "r1", "usuario": "u1", "estado": "pendiente", "fecha_hora": "2026-05-01T10:00:00Z"},
					{"id": "r2", "usuario": {"_id": "u2", "nombre": "Ana"}, "estado": "Cancelada"}
				]
			}`,
			expected: schedule.Session{
				ID:            "c1",
				StartTime:     time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC),
				EndTime:       time.Date(2026, 5, 4, 19, 0, 0, 0, time.UTC),
				TotalCapacity: intPtr(12),
				Trainer:       &schedule.Trainer{ID: "t1", FirstName: "Laura", LastName: "Gómez", PhotoURL: "/img/laura.png"},
				Activity:      &schedule.Activity{ID: "a1", Name: "Spinning", Description: "Bici fija", ImageURL: "spin.jpg"},
				Reservations: []schedule.Reservation{
					{ID: "r1", UserID: "u1", SessionID: "c1", Status: schedule.StatusPending, ReservedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)},
					{ID: "r2", UserID: "u2", SessionID: "c1", Status: schedule.StatusCancelled},
				},
			},
		},
		{
			name: "Plain id, null nested objects, single reservation object",
			raw: `{
				"id": 42,
				"fecha_hora_ini": "2026-05-04 18:00:00",
				"cupo_disp": "8",
				"entrenador": null,
				"actividad": null,
				"reservas": {"_id": {"$oid": "r9"}, "usuario": "u1", "estado": "cerrada"}
			}`,
			expected: schedule.Session{
				ID:            "42",
				StartTime:     time.Date(2026, 5, 4, 18, 0, 0, 0, buenosAires),
				TotalCapacity: intPtr(8),
				Reservations: []schedule.Reservation{
					{ID: "r9", UserID: "u1", SessionID: "42", Status: schedule.StatusClosed},
				},
			},
		},
		{
			name: "Missing everything optional",
			raw:  `{"_id": "c3"}`,
			expected: schedule.Session{
				ID:           "c3",
				Reservations: []schedule.Reservation{},
			},
		},
		{
			name: "Malformed capacity and unparsable dates",
			raw:  `{"_id": "c4", "cupo": "muchos", "fecha_hora_ini": "mañana", "fecha_hora_fin": true, "reservas": null}`,
			expected: schedule.Session{
				ID:           "c4",
				Reservations: []schedule.Reservation{},
			},
		},
		{
			name: "Extended JSON dates and unpopulated references",
			raw: `{
				"_id": {"$oid": "c5"},
				"fecha_hora_ini": {"$date": "2026-06-01T09:00:00Z"},
				"fecha_hora_fin": {"$date": {"$numberLong": "1780308000000"}},
				"cupo": 0,
				"entrenador": "t1",
				"actividad": "a1",
				"reservas": ["r1", {"id": "r2", "usuario": "u3", "estado": "???"}]
			}`,
			expected: schedule.Session{
				ID:            "c5",
				StartTime:     time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
				EndTime:       time.UnixMilli(1780308000000).UTC(),
				TotalCapacity: intPtr(0),
				Reservations: []schedule.Reservation{
					{ID: "r2", UserID: "u3", SessionID: "c5", Status: schedule.StatusUnknown},
				},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := n.Session(decodeClass(t, tc.raw))
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestSession_ReservationsNeverNil(t *testing.T) {
	n := New(time.UTC)
	for _, body := range []string{`{}`, `{"reservas": null}`, `{"reservas": []}`, `{"reservas": 3}`, `{"reservas": "x"}`} {
		got := n.Session(decodeClass(t, body))
		assert.NotNil(t, got.Reservations, body)
		assert.Empty(t, got.Reservations, body)
	}
}

func TestSession_Idempotent(t *testing.T) {
	n := New(time.UTC)
	raw := decodeClass(t, `{"_id":"c1","cupo":"5","reservas":{"id":"r1","usuario":"u1","estado":"pendiente"},"actividad":{"nombre":"Yoga"}}`)

	first := n.Session(raw)
	second := n.Session(raw)

	assert.Equal(t, first, second)
	first.Reservations[0].Status = schedule.StatusCancelled
	*first.TotalCapacity = 99
	assert.Equal(t, schedule.StatusPending, n.Session(raw).Reservations[0].Status, "outputs must not share state")
	assert.Equal(t, 5, *n.Session(raw).TotalCapacity)
}

func TestSession_EmbeddedUserReservation(t *testing.T) {
	n := New(time.UTC)

	t.Run("Embedded object without user is attributed to the requester", func(t *testing.T) {
		raw := decodeClass(t, `{"_id":"c1","reservas":[{"id":"r1","usuario":"u2","estado":"pendiente"}],"reservaUsuario":{"id":"r5","estado":"pendiente"}}`)
		raw.RequestedFor = "me"

		got := n.Session(raw)

		require.Len(t, got.Reservations, 2)
		assert.Equal(t, schedule.Reservation{ID: "r5", UserID: "me", SessionID: "c1", Status: schedule.StatusPending}, got.Reservations[1])
	})

	t.Run("Embedded object already in the list is not duplicated", func(t *testing.T) {
		raw := decodeClass(t, `{"_id":"c1","reservas":[{"id":"r5","usuario":"me","estado":"pendiente"}],"reservaUsuario":{"id":"r5","usuario":"me","estado":"pendiente"}}`)
		raw.RequestedFor = "me"

		assert.Len(t, n.Session(raw).Reservations, 1)
	})

	t.Run("Bare status becomes a reservation of the requester", func(t *testing.T) {
		raw := decodeClass(t, `{"_id":"c1","estadoReservaUsuario":"pendiente"}`)
		raw.RequestedFor = "me"

		got := n.Session(raw)

		require.Len(t, got.Reservations, 1)
		assert.Equal(t, "me", got.Reservations[0].UserID)
		assert.Equal(t, schedule.StatusPending, got.Reservations[0].Status)
	})

	t.Run("Bare status is ignored without a requester", func(t *testing.T) {
		raw := decodeClass(t, `{"_id":"c1","estadoReservaUsuario":"pendiente"}`)
		assert.Empty(t, n.Session(raw).Reservations)
	})
}

func TestReservationEntry(t *testing.T) {
	n := New(time.UTC)
	var raws []backend.RawReservation
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":"r1","estado":"pendiente","fecha_hora":"2026-05-01T10:00:00Z",
		 "clase":{"id":"c1","fecha_hora_ini":"2026-05-04T18:00:00Z","cupo_disp":10,"actividad":{"id":"a1","nombre":"Yoga"}}},
		{"id":"r2","estado":"cerrada","clase":"c2"}
	]`), &raws))

	entries := n.ReservationEntries(raws)

	require.Len(t, entries, 2)
	assert.Equal(t, "c1", entries[0].Reservation.SessionID)
	require.NotNil(t, entries[0].Class)
	assert.Equal(t, "Yoga", entries[0].Class.Title())
	assert.Equal(t, time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC), entries[0].Class.StartTime)

	assert.Equal(t, "c2", entries[1].Reservation.SessionID)
	assert.Equal(t, schedule.StatusClosed, entries[1].Reservation.Status)
	assert.Nil(t, entries[1].Class)
}

func TestActivities(t *testing.T) {
	var raws []backend.RawActivity
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"a1","nombre":"Yoga","imagenUrl":"https://cdn/yoga.png"},{"_id":"a2","nombre":"Box"}]`), &raws))

	got := New(nil).Activities(raws)

	assert.Equal(t, []schedule.Activity{
		{ID: "a1", Name: "Yoga", ImageURL: "https://cdn/yoga.png"},
		{ID: "a2", Name: "Box"},
	}, got)
}

func TestInstant(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	testCases := []struct {
		name     string
		raw      string
		expected time.Time
	}{
		{"RFC3339 with offset", `"2026-05-04T18:00:00-03:00"`, time.Date(2026, 5, 4, 21, 0, 0, 0, time.UTC)},
		{"Zone-less T layout", `"2026-05-04T18:00:00"`, time.Date(2026, 5, 4, 18, 0, 0, 0, loc)},
		{"Zone-less minutes", `"2026-05-04 18:30"`, time.Date(2026, 5, 4, 18, 30, 0, 0, loc)},
		{"Epoch millis", `1780308000000`, time.UnixMilli(1780308000000).UTC()},
		{"Null", `null`, time.Time{}},
		{"Garbage", `"soon"`, time.Time{}},
		{"Object without date", `{"x":1}`, time.Time{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := instant(json.RawMessage(tc.raw), loc)
			assert.True(t, tc.expected.Equal(got), "expected %v, got %v", tc.expected, got)
		})
	}
}

func TestInteger(t *testing.T) {
	testCases := []struct {
		raw    string
		value  int
		accept bool
	}{
		{`10`, 10, true},
		{`"7"`, 7, true},
		{`0`, 0, true},
		{`2.5`, 0, false},
		{`-1`, 0, false},
		{`"diez"`, 0, false},
		{`null`, 0, false},
		{`{}`, 0, false},
	}

	for _, tc := range testCases {
		v, ok := integer(json.RawMessage(tc.raw))
		assert.Equal(t, tc.accept, ok, tc.raw)
		assert.Equal(t, tc.value, v, tc.raw)
	}
}
