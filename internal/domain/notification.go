package domain

import "time"

// ChannelType enumerates delivery mechanisms for alerts and subscriptions.
type ChannelType string

const (
	ChannelEmail ChannelType = "email"
	ChannelSlack ChannelType = "slack"
)

// ScheduleType enumerates how often a channel fires.
type ScheduleType string

const (
	ScheduleHourly  ScheduleType = "hourly"
	ScheduleDaily   ScheduleType = "daily"
	ScheduleWeekly  ScheduleType = "weekly"
	ScheduleMonthly ScheduleType = "monthly"
)

// AlertCondition describes what triggers an alert.
type AlertCondition string

const (
	AlertConditionRows AlertCondition = "rows"
	AlertConditionGoal AlertCondition = "goal"
)

// Recipient is one addressee of a channel.
type Recipient struct {
	UserID *int64 `json:"user_id,omitempty"`
	Email  string `json:"email"`
}

// Channel is a single delivery configuration.
type Channel struct {
	Type         ChannelType  `json:"channel_type"`
	Enabled      bool         `json:"enabled"`
	ScheduleType ScheduleType `json:"schedule_type"`
	ScheduleHour *int         `json:"schedule_hour,omitempty"`
	ScheduleDay  string       `json:"schedule_day,omitempty"`
	Recipients   []Recipient  `json:"recipients"`
	SlackChannel string       `json:"slack_channel,omitempty"`
}

// CollectionRef names the collection a notification's target lives in.
type CollectionRef struct {
	ID   int64
	Name string
}

// Alert notifies recipients when a question's results meet a condition.
type Alert struct {
	ID          int64
	CardID      int64
	CardName    string
	Collection  *CollectionRef
	Condition   AlertCondition
	AboveGoal   *bool
	Channels    []Channel
	CreatorName string
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DashboardFilter is a parameter value applied to a subscription.
type DashboardFilter struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Subscription delivers a dashboard to recipients on a schedule.
type Subscription struct {
	ID            int64
	DashboardID   int64
	DashboardName string
	Collection    *CollectionRef
	Channels      []Channel
	Filters       []DashboardFilter
	CreatorName   string
	Archived      bool
	LastSentAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
