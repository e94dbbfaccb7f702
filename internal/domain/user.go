package domain

import (
	"time"
)

const MaxStreakGoal = 7

// User owns a list of workout ids. The email is the routing key of the users collection.
type User struct {
	ID             ID           `bson:"_id" json:"id"`
	Name           string       `bson:"name" json:"name"`
	Email          string       `bson:"email" json:"email"`
	PasswordHash   string       `bson:"passwordHash" json:"-"` // Never expose this via JSON
	WorkoutIDs     []ID         `bson:"workoutIds" json:"workoutIds"`
	Bodyweight     []Bodyweight `bson:"bodyweight" json:"bodyweight"`
	StreakGoal     int          `bson:"streakGoal" json:"streakGoal"`
	StreakProgress int          `bson:"streakProgress" json:"streakProgress"`
	Streak         int          `bson:"streak" json:"streak"`
	Version        int64        `bson:"version" json:"version"`
	CreatedAt      time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// Bodyweight is one weigh-in entry.
type Bodyweight struct {
	ID     ID        `bson:"id" json:"id"`
	Weight float64   `bson:"bodyWeight" json:"bodyWeight"`
	Date   time.Time `bson:"date" json:"date"`
}

func (u *User) HasWorkout(id ID) bool {
	for _, w := range u.WorkoutIDs {
		if w == id {
			return true
		}
	}
	return false
}

// AddWorkout appends id unless it is already referenced.
func (u *User) AddWorkout(id ID) {
	if u.HasWorkout(id) {
		return
	}
	u.WorkoutIDs = append(u.WorkoutIDs, id)
}

// RemoveWorkout drops every reference to id and reports whether one existed.
func (u *User) RemoveWorkout(id ID) bool {
	kept := u.WorkoutIDs[:0]
	removed := false
	for _, w := range u.WorkoutIDs {
		if w == id {
			removed = true
			continue
		}
		kept = append(kept, w)
	}
	u.WorkoutIDs = kept
	return removed
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.WorkoutIDs != nil {
		c.WorkoutIDs = make([]ID, len(u.WorkoutIDs))
		copy(c.WorkoutIDs, u.WorkoutIDs)
	}
	if u.Bodyweight != nil {
		c.Bodyweight = make([]Bodyweight, len(u.Bodyweight))
		copy(c.Bodyweight, u.Bodyweight)
	}
	return &c
}
