package gatt

import (
	"fmt"
	"sync"
	"time"
)

// Client implements the outbound half of the ATT protocol (spec.md
// §4.7): requests this device issues as a GATT client against a
// connected peripheral's attribute database. Responses arrive
// asynchronously over ACL and are routed here by the stack's ACL
// dispatcher via deliverResponse.
type Client struct {
	engine  *hciEngine
	timeout time.Duration
	h       *Handlers

	mu      sync.Mutex
	pending chan []byte // non-nil while a request awaits its response
	mtu     uint16
}

func newAttClient(engine *hciEngine, timeout time.Duration, h *Handlers) *Client {
	return &Client{engine: engine, timeout: timeout, h: h, mtu: 23}
}

// deliverResponse hands an inbound response/error PDU to whichever
// request is currently outstanding. A PDU with no pending request
// (e.g. arriving after a timeout) is dropped.
func (c *Client) deliverResponse(pdu []byte) {
	c.mu.Lock()
	ch := c.pending
	c.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- pdu:
	default:
	}
}

// MTU returns the negotiated ATT MTU, or the 23-byte default before
// ExchangeMTU has run.
func (c *Client) MTU() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mtu
}

// roundTrip sends req over the current connection's ATT channel and
// waits for the matching response, enforcing the single-request-in-
// flight discipline used throughout this stack (spec.md §5).
func (c *Client) roundTrip(req []byte) ([]byte, error) {
	handle, connected := c.engine.ConnHandle()
	if !connected {
		return nil, newErr(ErrInvalidParameters, "not connected")
	}

	ch := make(chan []byte, 1)
	c.mu.Lock()
	c.pending = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.pending = nil
		c.mu.Unlock()
	}()

	if err := c.engine.submitAcl(handle, l2capFrame(req)); err != nil {
		return nil, err
	}

	select {
	case pdu := <-ch:
		if op, h, code, ok := attParseErrorResp(pdu); ok {
			return nil, newAttError(code, fmt.Sprintf("request 0x%02X to handle 0x%04X rejected", op, h))
		}
		return pdu, nil
	case <-time.After(c.timeout):
		return nil, newErr(ErrCommandTimeout, "att request timed out")
	}
}

// ExchangeMTU negotiates the ATT MTU (spec.md §4.7). mtu must be at
// least 23, the ATT default.
func (c *Client) ExchangeMTU(mtu uint16) (uint16, error) {
	if mtu < 23 {
		return 0, newErr(ErrInvalidParameters, "mtu below minimum of 23")
	}
	resp, err := c.roundTrip(attBuildMtuReq(mtu))
	if err != nil {
		return 0, err
	}
	serverMTU, ok := attParseMtuResp(resp)
	if !ok {
		return 0, newErr(ErrInvalidEvent, "malformed exchange mtu response")
	}
	negotiated := mtu
	if serverMTU < negotiated {
		negotiated = serverMTU
	}
	c.mu.Lock()
	c.mtu = negotiated
	c.mu.Unlock()
	return negotiated, nil
}

// Read issues an ATT Read Request for handle.
func (c *Client) Read(handle uint16) ([]byte, error) {
	resp, err := c.roundTrip(attBuildReadReq(handle))
	if err != nil {
		return nil, err
	}
	v, ok := attParseReadResp(resp)
	if !ok {
		return nil, newErr(ErrInvalidEvent, "malformed read response")
	}
	return v, nil
}

// Write issues an ATT Write Request (with response) for handle.
func (c *Client) Write(handle uint16, value []byte) error {
	_, err := c.roundTrip(attBuildWriteReq(handle, value))
	return err
}

// WriteCommand issues an unacknowledged ATT Write Command; it does
// not wait for, or expect, a response.
func (c *Client) WriteCommand(handle uint16, value []byte) error {
	h, connected := c.engine.ConnHandle()
	if !connected {
		return newErr(ErrInvalidParameters, "not connected")
	}
	return c.engine.submitAcl(h, l2capFrame(attBuildWriteCmd(handle, value)))
}

// DiscoverPrimaryServices walks the full handle space with Read By
// Group Type requests, accumulating every advertised primary service
// (spec.md §4.7). Each service found is also emitted via
// Handlers.OnServiceDiscovered as it's read off the wire.
func (c *Client) DiscoverPrimaryServices() ([]ServiceInfo, error) {
	var all []ServiceInfo
	start := uint16(1)
	for start != 0 {
		resp, err := c.roundTrip(attBuildReadByGroupReq(start, 0xFFFF))
		if err != nil {
			if ae, ok := err.(*AttError); ok && ae.Code == AttErrAttributeNotFound {
				break
			}
			return nil, err
		}
		tuples, ok := attParseReadByGroupResp(resp)
		if !ok || len(tuples) == 0 {
			break
		}
		for _, svc := range tuples {
			if c.h != nil && c.h.OnServiceDiscovered != nil {
				c.h.OnServiceDiscovered(ServiceDiscoveredEvent{UUID: svc.UUID, StartHandle: svc.StartHandle, EndHandle: svc.EndHandle})
			}
		}
		all = append(all, tuples...)
		last := tuples[len(tuples)-1].EndHandle
		if last == 0xFFFF {
			break
		}
		start = last + 1
	}
	return all, nil
}

// DiscoverCharacteristics walks [startHandle, endHandle] with Read By
// Type requests for the characteristic declaration UUID, accumulating
// every characteristic within a discovered service's range. Each
// characteristic found is also emitted via Handlers.OnCharacteristicFound.
func (c *Client) DiscoverCharacteristics(startHandle, endHandle uint16) ([]CharacteristicInfo, error) {
	var all []CharacteristicInfo
	start := startHandle
	for start <= endHandle {
		resp, err := c.roundTrip(attBuildReadByTypeReq(start, endHandle))
		if err != nil {
			if ae, ok := err.(*AttError); ok && ae.Code == AttErrAttributeNotFound {
				break
			}
			return nil, err
		}
		tuples, ok := attParseReadByTypeResp(resp)
		if !ok || len(tuples) == 0 {
			break
		}
		for _, ch := range tuples {
			if c.h != nil && c.h.OnCharacteristicFound != nil {
				c.h.OnCharacteristicFound(CharacteristicDiscoveredEvent{UUID: ch.UUID, DeclHandle: ch.DeclHandle, ValueHandle: ch.ValueHandle, Properties: ch.Properties})
			}
		}
		all = append(all, tuples...)
		last := tuples[len(tuples)-1].DeclHandle
		if last >= endHandle || last == 0xFFFF {
			break
		}
		start = last + 1
	}
	return all, nil
}

// Subscribe writes the CCCD to request notifications (indicate=false)
// or indications (indicate=true) from a remote characteristic.
func (c *Client) Subscribe(cccdHandle uint16, indicate bool) error {
	val := uint16(subscribeNotify)
	if indicate {
		val = uint16(subscribeIndicate)
	}
	return c.Write(cccdHandle, []byte{byte(val), byte(val >> 8)})
}

// Unsubscribe clears the CCCD, stopping notifications/indications.
func (c *Client) Unsubscribe(cccdHandle uint16) error {
	return c.Write(cccdHandle, []byte{0x00, 0x00})
}
