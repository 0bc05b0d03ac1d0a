package profile

import (
	"time"

	"github.com/menta2k/photo-cropper/pkg/session"
	"github.com/menta2k/photo-cropper/pkg/types"
)

// ProfileImage is a picked photo together with its last saved crop.
// It corresponds to the 'profile_images' table.
type ProfileImage struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	ImageData        []byte `gorm:"" json:"-"`
	CroppedImageData []byte `gorm:"" json:"-"`
	CroppedFormat    string `gorm:"size:8" json:"cropped_format,omitempty"`

	// Zoom is 0 until a crop has been saved
	Zoom    float64 `gorm:"not null;default:0" json:"zoom"`
	OffsetX float64 `gorm:"not null;default:0" json:"offset_x"`
	OffsetY float64 `gorm:"not null;default:0" json:"offset_y"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (ProfileImage) TableName() string {
	return "profile_images"
}

// HasImage reports whether a photo has been picked
func (p *ProfileImage) HasImage() bool {
	return len(p.ImageData) > 0
}

// HasCrop reports whether a cropped result has been saved
func (p *ProfileImage) HasCrop() bool {
	return len(p.CroppedImageData) > 0
}

// SetOriginal replaces the picked photo. Any previous crop and framing is discarded.
func (p *ProfileImage) SetOriginal(data []byte) {
	p.ImageData = data
	p.CroppedImageData = nil
	p.CroppedFormat = ""
	p.Zoom = 0
	p.OffsetX = 0
	p.OffsetY = 0
}

// SaveCrop records a cropped result and the framing that produced it
func (p *ProfileImage) SaveCrop(cropped []byte, format string, st session.State) {
	p.CroppedImageData = cropped
	p.CroppedFormat = format
	p.Zoom = st.Zoom
	p.OffsetX = st.Offset.DX
	p.OffsetY = st.Offset.DY
}

// RestoreState returns the framing of the last saved crop. ok is false when
// nothing was saved yet, in which case a fresh session should be started.
func (p *ProfileImage) RestoreState() (st session.State, ok bool) {
	if !p.HasCrop() {
		return session.DefaultState(), false
	}
	st = session.State{
		Zoom:   p.Zoom,
		Offset: types.Offset{DX: p.OffsetX, DY: p.OffsetY},
	}
	if st.Zoom == 0 {
		st.Zoom = session.DefaultState().Zoom
	}
	return st, true
}
