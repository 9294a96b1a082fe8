package backend

import (
	"encoding/json"
	"time"
)

// Envelope models the top-level structure of every backend response.
type Envelope[T any] struct {
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// RawClass is a class session exactly as the backend sends it. Fields are
// kept raw because their shapes vary between endpoints and revisions; only
// the normalize package reads them.
type RawClass struct {
	MongoID              json.RawMessage `json:"_id,omitempty"`
	ID                   json.RawMessage `json:"id,omitempty"`
	Name                 json.RawMessage `json:"nombre,omitempty"`
	Description          json.RawMessage `json:"descripcion,omitempty"`
	Start                json.RawMessage `json:"fecha_hora_ini,omitempty"`
	End                  json.RawMessage `json:"fecha_hora_fin,omitempty"`
	Capacity             json.RawMessage `json:"cupo,omitempty"`
	AvailableCapacity    json.RawMessage `json:"cupo_disp,omitempty"`
	Trainer              json.RawMessage `json:"entrenador,omitempty"`
	Activity             json.RawMessage `json:"actividad,omitempty"`
	Reservations         json.RawMessage `json:"reservas,omitempty"`
	UserReservation      json.RawMessage `json:"reservaUsuario,omitempty"`
	UserReservationState json.RawMessage `json:"estadoReservaUsuario,omitempty"`

	// RequestedFor is the user id the list was fetched for, if any.
	RequestedFor string `json:"-"`
}

// RawReservation is a reservation as the backend sends it, either nested in a
// class or at the top level of /api/Reservas with its class embedded.
type RawReservation struct {
	MongoID    json.RawMessage `json:"_id,omitempty"`
	ID         json.RawMessage `json:"id,omitempty"`
	User       json.RawMessage `json:"usuario,omitempty"`
	Class      json.RawMessage `json:"clase,omitempty"`
	Status     json.RawMessage `json:"estado,omitempty"`
	ReservedAt json.RawMessage `json:"fecha_hora,omitempty"`
}

// RawActivity is an entry of GET /api/actividad.
type RawActivity struct {
	MongoID     json.RawMessage `json:"_id,omitempty"`
	ID          json.RawMessage `json:"id,omitempty"`
	Name        json.RawMessage `json:"nombre,omitempty"`
	Description json.RawMessage `json:"descripcion,omitempty"`
	ImageURL    json.RawMessage `json:"imagenUrl,omitempty"`
	Image       json.RawMessage `json:"imagen,omitempty"`
}

// ClassQuery scopes a class listing.
type ClassQuery struct {
	ActivityID string
	Date       time.Time // zero means any day
	ForUser    string    // embed this user's reservation state
	AllOrdered bool      // admin listing of every class, ordered by the backend
}

// NewReservation is the body of POST /api/Reservas.
type NewReservation struct {
	ReservedAt time.Time `json:"fecha_hora"`
	Status     string    `json:"estado"`
	UserID     string    `json:"usuario"`
	ClassID    string    `json:"clase"`
}

// HireRequest is the body of POST /api/contratos/contratar.
type HireRequest struct {
	UserID       string `json:"usuarioId"`
	MembershipID string `json:"membresiaId"`
}

// PaymentRequest is the body of POST /api/contratos/simular-pago.
type PaymentRequest struct {
	ContractID    string `json:"contratoId"`
	PaymentMethod string `json:"metodoPago,omitempty"`
}

// ClassReservationRow is one line of the per-class reservation report.
type ClassReservationRow struct {
	ActivityID   string `json:"idActividad"`
	ActivityName string `json:"nombreActividad"`
	UserID       string `json:"idUsuario"`
	FirstName    string `json:"nombre"`
	LastName     string `json:"apellido"`
	ClassStart   string `json:"fecha_hora_ini"`
	ClassEnd     string `json:"fecha_hora_fin"`
	ReservedAt   string `json:"fecha_hora_reserva"`
	Status       string `json:"estado_reserva"`
}

const (
	wireStatusPending   = "pendiente"
	wireStatusCancelled = "cancelada"
)
