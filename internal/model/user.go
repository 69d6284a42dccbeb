package model

import "time"

// User is a person who can borrow vehicles or sit on an acceptance
// committee.  The directory is intentionally minimal; this service
// performs no authentication.
type User struct {
    ID        uint64    // users.id
    FullName  string    // users.full_name (unique)
    CreatedAt time.Time // users.created_at
}
