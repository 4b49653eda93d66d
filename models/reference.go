package models

// PositionGuest is the general guest role. Only guests holding it are
// managed by the audience classifier; organiser roles keep whatever
// audiences staff assigned them.
const PositionGuest = "Guest"

type Title struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:10;not null;unique" json:"name"`
}

type Position struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:30;not null;unique" json:"name"`
}

type Dietary struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:30;not null;unique" json:"name"`
}

type Starter struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:500;not null" json:"name"`
}

type Main struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:500;not null" json:"name"`
}
