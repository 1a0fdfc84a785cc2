package models

// ImageReference is implemented by payloads that persist an uploaded image.
// The stored value is always the image_name returned by the upload endpoint.
type ImageReference interface {
	SetImage(name string)
}

func (p *SalonPayload) SetImage(name string)        { p.Image = name }
func (p *ServicePayload) SetImage(name string)      { p.Icon = name }
func (p *ServiceGroupPayload) SetImage(name string) { p.Icon = name }
func (p *StaffPayload) SetImage(name string)        { p.Image = name }
