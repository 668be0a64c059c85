package process

import "time"

// TopicPrefix is the bus namespace every field message is published under.
const TopicPrefix = "process_records"

// Field names double as column names and as the last topic segment.
const (
	FieldLotNumber        = "lot_number"
	FieldTodaysDate       = "todays_date"
	FieldProcessStartTime = "process_start_time"
	FieldProcessEndTime   = "process_end_time"
	FieldProcessDuration  = "process_duration"
)

// Fields lists the published fields in publish order.
var Fields = []string{
	FieldLotNumber,
	FieldTodaysDate,
	FieldProcessStartTime,
	FieldProcessEndTime,
	FieldProcessDuration,
}

// Topic returns the bus topic for a field, e.g. process_records/lot_number.
func Topic(field string) string {
	return TopicPrefix + "/" + field
}

// Record is one submitted manufacturing process. Rows are append-only.
type Record struct {
	ID               string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	LotNumber        int       `gorm:"not null;index" json:"lot_number"`
	RecordCreatedAt  time.Time `gorm:"column:todays_date;index" json:"todays_date"`
	ProcessStartTime time.Time `gorm:"not null" json:"process_start_time"`
	ProcessEndTime   time.Time `gorm:"not null" json:"process_end_time"`
	ProcessDuration  int64     `json:"process_duration"` // seconds
}

// TableName pins the table name.
func (Record) TableName() string {
	return "process_records"
}

// Duration returns ProcessDuration as a time.Duration.
func (r Record) Duration() time.Duration {
	return time.Duration(r.ProcessDuration) * time.Second
}
