////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package contacts finds people from the device address book and builds
// invitations for those who do not use the app yet.
package contacts

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/simplechat/storage"
)

const (
	// InviteBaseURL is the landing page shared in invitations.
	InviteBaseURL = "https://simplechat.app"

	inviteTitle = "Join me on SimpleChat!"
	inviteText  = "🚀 Hey %s! I'm using SimpleChat for messaging. Join me: %s"
)

// ErrAccessDenied is returned when contacts are read without permission.
var ErrAccessDenied = errors.New("access to contacts has not been granted")

// Contact is one entry of the device address book.
type Contact struct {
	ID          string
	Name        string
	PhoneNumber string

	// IsAppUser is true if the contact has an account. UserID is then set if
	// the account is known locally.
	IsAppUser bool
	UserID    string
}

// Invitation is a message that can be shared with a contact.
type Invitation struct {
	ContactID string
	Title     string
	Text      string
	URL       string
}

// Provider reads the address book. Implementations may block on the user or
// the platform, so every call takes a context.
type Provider interface {
	// RequestAccess asks for permission to read contacts and syncs them if
	// it is granted.
	RequestAccess(ctx context.Context) (bool, error)

	// Sync reads the contacts. Returns ErrAccessDenied without permission.
	Sync(ctx context.Context) ([]Contact, error)

	// Invite builds an invitation for the contact.
	Invite(ctx context.Context, c Contact) (Invitation, error)
}

// mockContacts is the address book of the simulated device.
var mockContacts = []Contact{
	{ID: "contact1", Name: "Alice Johnson", PhoneNumber: "+1234567890", IsAppUser: true},
	{ID: "contact2", Name: "Bob Smith", PhoneNumber: "+1234567891"},
	{ID: "contact3", Name: "Carol Wilson", PhoneNumber: "+1234567892", IsAppUser: true},
	{ID: "contact4", Name: "David Brown", PhoneNumber: "+1234567893"},
	{ID: "contact5", Name: "Emma Davis", PhoneNumber: "+1234567894"},
}

// SimulatedProvider is a Provider over a fixed address book. Whether access is
// granted is decided when it is created.
type SimulatedProvider struct {
	inviterID string
	grant     bool

	granted  bool
	contacts []Contact
	mux      sync.Mutex
}

// NewSimulatedProvider returns a Provider for the given inviting user that
// grants access if grant is true.
func NewSimulatedProvider(inviterID string, grant bool) *SimulatedProvider {
	return &SimulatedProvider{inviterID: inviterID, grant: grant}
}

// RequestAccess records the permission decision and syncs on success.
func (sp *SimulatedProvider) RequestAccess(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	sp.mux.Lock()
	sp.granted = sp.grant
	sp.mux.Unlock()

	if !sp.grant {
		jww.INFO.Printf("[CONTACTS] Access to contacts denied for %s",
			sp.inviterID)
		return false, nil
	}

	if _, err := sp.Sync(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// HasAccess returns true once access has been granted.
func (sp *SimulatedProvider) HasAccess() bool {
	sp.mux.Lock()
	defer sp.mux.Unlock()
	return sp.granted
}

// Sync returns the address book with phone numbers in E.164 form. Entries
// whose number cannot be parsed keep it as is.
func (sp *SimulatedProvider) Sync(ctx context.Context) ([]Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sp.mux.Lock()
	defer sp.mux.Unlock()
	if !sp.granted {
		return nil, ErrAccessDenied
	}

	out := make([]Contact, len(mockContacts))
	for i, c := range mockContacts {
		phone, err := storage.NormalizePhone(c.PhoneNumber)
		if err != nil {
			jww.WARN.Printf("[CONTACTS] Keeping unparsable number of %s: %+v",
				c.ID, err)
			phone = c.PhoneNumber
		}
		c.PhoneNumber = phone
		out[i] = c
	}
	sp.contacts = out

	jww.DEBUG.Printf("[CONTACTS] Synced %d contacts", len(out))
	return append([]Contact(nil), out...), nil
}

// Contacts returns the result of the last sync.
func (sp *SimulatedProvider) Contacts() []Contact {
	sp.mux.Lock()
	defer sp.mux.Unlock()
	return append([]Contact(nil), sp.contacts...)
}

// Invite builds the invitation text with a link referencing the inviting
// user.
func (sp *SimulatedProvider) Invite(ctx context.Context, c Contact) (
	Invitation, error) {
	if err := ctx.Err(); err != nil {
		return Invitation{}, err
	}

	inv := NewInvitation(sp.inviterID, c)
	jww.INFO.Printf("[CONTACTS] Prepared invitation for %s", c.Name)
	return inv, nil
}

// NewInvitation returns the invitation a user sends to a contact.
func NewInvitation(inviterID string, c Contact) Invitation {
	link := InviteURL(inviterID)
	return Invitation{
		ContactID: c.ID,
		Title:     inviteTitle,
		Text:      fmt.Sprintf(inviteText, c.Name, link),
		URL:       InviteBaseURL,
	}
}

// InviteURL returns the referral link of the user.
func InviteURL(inviterID string) string {
	return InviteBaseURL + "/invite?ref=" + url.QueryEscape(inviterID)
}

// MatchAppUsers marks every contact whose phone number belongs to one of the
// account records. Contacts already known to use the app stay marked.
func MatchAppUsers(contacts []Contact,
	records []storage.AccountRecord) []Contact {
	byPhone := make(map[string]string, len(records))
	for _, r := range records {
		if r.PhoneNumber == "" {
			continue
		}
		phone, err := storage.NormalizePhone(r.PhoneNumber)
		if err != nil {
			continue
		}
		byPhone[phone] = r.ID
	}

	out := make([]Contact, len(contacts))
	for i, c := range contacts {
		phone, err := storage.NormalizePhone(c.PhoneNumber)
		if err == nil {
			if id, exists := byPhone[phone]; exists {
				c.IsAppUser = true
				c.UserID = id
			}
		}
		out[i] = c
	}
	return out
}
