package gatt

import "sync"

// Design parameters (spec.md §3).
const (
	maxServices           = 10
	maxCharsPerService     = 10
)

// Database is the local GATT attribute database (spec.md §4.6): an
// ordered collection of services, each owning an ordered list of
// characteristics, with monotonically-allocated 16-bit handles.
type Database struct {
	mu         sync.RWMutex
	services   []*Service
	nextHandle uint16
	index      *handleRange
}

// NewDatabase returns an empty database with handle allocation
// starting at 1 (spec.md §3).
func NewDatabase() *Database {
	db := &Database{nextHandle: 1}
	db.reindex()
	return db
}

// RegisterService appends a new service and allocates its declaration
// handle. Fails InsufficientResources if there are already 10
// services (spec.md §4.6 design parameter).
func (db *Database) RegisterService(uuid UUID, isPrimary bool) (*Service, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if len(db.services) >= maxServices {
		return nil, newAttError(AttErrInsufficientResrc, "service table full")
	}

	h := db.allocHandle()
	svc := &Service{declHandle: h, uuid: uuid, primary: isPrimary, endHandle: h}
	db.services = append(db.services, svc)
	db.reindex()
	logGATT.Debugf("registered service %s at handle 0x%04X", uuid, h)
	return svc, nil
}

// AddCharacteristic appends a characteristic to the named service,
// allocating its declaration and value handles (and a CCCD handle if
// props includes Notify or Indicate), per spec.md §3's rule: value
// handle = declHandle+1, CCCD (if present) = declHandle+2.
func (db *Database) AddCharacteristic(serviceUUID, charUUID UUID, props, perms uint8, initial []byte, length int) (*Characteristic, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	svc := db.findServiceLocked(serviceUUID)
	if svc == nil {
		return nil, newAttError(AttErrInvalidHandle, "service not found")
	}
	if len(svc.chars) >= maxCharsPerService {
		return nil, newAttError(AttErrInsufficientResrc, "characteristic table full")
	}
	if length > maxValueLen {
		return nil, newAttError(AttErrInvalidValueLength, "value too long")
	}

	declHandle := db.allocHandle()
	valueHandle := db.allocHandle()

	var cccdHandle uint16
	if props&(PropNotify|PropIndicate) != 0 {
		cccdHandle = db.allocHandle()
	}

	value := make([]byte, length)
	copy(value, initial)

	char := &Characteristic{
		declHandle:  declHandle,
		uuid:        charUUID,
		props:       props,
		perms:       perms,
		valueHandle: valueHandle,
		cccdHandle:  cccdHandle,
		value:       value,
	}
	svc.chars = append(svc.chars, char)
	svc.endHandle = db.maxAllocated()
	db.reindex()
	logGATT.Debugf("added characteristic %s: decl=0x%04X value=0x%04X cccd=0x%04X", charUUID, declHandle, valueHandle, cccdHandle)
	return char, nil
}

// UpdateCharacteristicValue overwrites the stored value of the named
// characteristic.
func (db *Database) UpdateCharacteristicValue(serviceUUID, charUUID UUID, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	char := db.findCharacteristicLocked(serviceUUID, charUUID)
	if char == nil {
		return newAttError(AttErrInvalidHandle, "characteristic not found")
	}
	if len(value) > maxValueLen {
		return newAttError(AttErrInvalidValueLength, "value too long")
	}
	char.value = append(char.value[:0], value...)
	return nil
}

// ReadCharacteristicValue returns a copy of the named characteristic's
// current value.
func (db *Database) ReadCharacteristicValue(serviceUUID, charUUID UUID) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	char := db.findCharacteristicLocked(serviceUUID, charUUID)
	if char == nil {
		return nil, newAttError(AttErrInvalidHandle, "characteristic not found")
	}
	return char.Value(), nil
}

// RemoveService removes the named service, shifting remaining
// services left. Handles are NOT rewritten: they are stable for the
// lifetime of the stack (spec.md §4.6).
func (db *Database) RemoveService(uuid UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	idx := -1
	for i, s := range db.services {
		if s.uuid.Equal(uuid) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return newAttError(AttErrInvalidHandle, "service not found")
	}
	db.services = append(db.services[:idx], db.services[idx+1:]...)
	db.reindex()
	return nil
}

// FindCharacteristic looks up a characteristic by its owning service
// and own UUID, for use by code that needs the live *Characteristic
// (e.g. to send a notification/indication).
func (db *Database) FindCharacteristic(serviceUUID, charUUID UUID) (*Characteristic, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	char := db.findCharacteristicLocked(serviceUUID, charUUID)
	if char == nil {
		return nil, newAttError(AttErrInvalidHandle, "characteristic not found")
	}
	return char, nil
}

// Services returns the registered services in registration order.
func (db *Database) Services() []*Service {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]*Service, len(db.services))
	copy(out, db.services)
	return out
}

// handleByNumber looks up the handle index entry for n. Safe for
// concurrent use with registration.
func (db *Database) handleByNumber(n uint16) (handleEntry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.index.At(n)
}

func (db *Database) handleSubrange(start, end uint16) []handleEntry {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.index.Subrange(start, end)
}

func (db *Database) allocHandle() uint16 {
	h := db.nextHandle
	db.nextHandle++
	return h
}

func (db *Database) maxAllocated() uint16 {
	if db.nextHandle == 0 {
		return 0
	}
	return db.nextHandle - 1
}

func (db *Database) findServiceLocked(uuid UUID) *Service {
	for _, s := range db.services {
		if s.uuid.Equal(uuid) {
			return s
		}
	}
	return nil
}

func (db *Database) findCharacteristicLocked(serviceUUID, charUUID UUID) *Characteristic {
	svc := db.findServiceLocked(serviceUUID)
	if svc == nil {
		return nil
	}
	return svc.findCharacteristic(charUUID)
}

// reindex rebuilds the flat handle index from the current service
// list. Must be called with db.mu held for writing.
func (db *Database) reindex() {
	var entries []handleEntry
	for _, svc := range db.services {
		entries = append(entries, handleEntry{n: svc.declHandle, kind: kindService, svc: svc})
		for _, c := range svc.chars {
			entries = append(entries, handleEntry{n: c.declHandle, kind: kindCharacteristic, svc: svc, char: c})
			entries = append(entries, handleEntry{n: c.valueHandle, kind: kindCharacteristicValue, svc: svc, char: c})
			if c.cccdHandle != 0 {
				entries = append(entries, handleEntry{n: c.cccdHandle, kind: kindCCCD, svc: svc, char: c})
			}
		}
	}
	db.index = &handleRange{entries: entries}
}
