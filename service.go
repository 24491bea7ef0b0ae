package gatt

// Service is an entry in the local GATT database (spec.md §3): a
// declaration handle, UUID, primary flag, and an ordered list of
// characteristics. register_service/add_characteristic (gattdb.go)
// are the only way to populate one; the zero value is never exposed.
type Service struct {
	declHandle uint16
	uuid       UUID
	primary    bool
	chars      []*Characteristic
	endHandle  uint16
}

// UUID returns the service's UUID.
func (s *Service) UUID() UUID { return s.uuid }

// DeclHandle returns the service declaration handle.
func (s *Service) DeclHandle() uint16 { return s.declHandle }

// EndHandle returns the last handle allocated to this service (its
// own declaration if it has no characteristics, or its last
// characteristic's highest handle otherwise).
func (s *Service) EndHandle() uint16 { return s.endHandle }

// Primary reports whether this is a primary service.
func (s *Service) Primary() bool { return s.primary }

// Characteristics returns the service's characteristics in
// registration order.
func (s *Service) Characteristics() []*Characteristic { return s.chars }

// CharacteristicCount returns the number of characteristics in s.
func (s *Service) CharacteristicCount() int { return len(s.chars) }

func (s *Service) findCharacteristic(u UUID) *Characteristic {
	for _, c := range s.chars {
		if c.uuid.Equal(u) {
			return c
		}
	}
	return nil
}
