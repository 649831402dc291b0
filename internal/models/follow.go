package models

import "time"

// Follow is one follower -> following edge.
type Follow struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	FollowerID  int       `gorm:"not null;uniqueIndex:ux_follow_pair,priority:1" json:"followerId"`
	FollowingID int       `gorm:"not null;uniqueIndex:ux_follow_pair,priority:2;index" json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}
