package domain

import "time"

// Notice is a community announcement targeted at a resident group.
type Notice struct {
	NoticeID    int64     `json:"notice_id"`
	CommunityID string    `json:"community_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	PublishTime time.Time `json:"publish_time"`
	TargetGroup string    `json:"target_group"`
}
