package model

import "time"

// Reservation is a planned future booking of a vehicle over a closed
// day interval.  Reservations are plans, not active-use signals: they
// never influence the resolved vehicle status, and past reservations
// are kept as historical fact rather than expired.
//
// Fields:
//  ID        – primary key identifier.
//  VehicleID – vehicle being reserved.
//  StartDate – first reserved day (inclusive).
//  EndDate   – last reserved day (inclusive, >= StartDate).
//  PartyName – who the vehicle is reserved for.
//  Note      – free text.
type Reservation struct {
    ID        uint64    // reservations.id
    VehicleID uint64    // reservations.vehicle_id
    StartDate time.Time // reservations.start_date (DATE)
    EndDate   time.Time // reservations.end_date (DATE)
    PartyName string    // reservations.party_name
    Note      string    // reservations.note
    CreatedAt time.Time // reservations.created_at
}
