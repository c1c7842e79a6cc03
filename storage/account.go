////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package storage

import (
	"strings"
	"sync"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/ttacon/libphonenumber"
	"golang.org/x/crypto/bcrypt"
)

// Storage keys shared by every account on the device.
const (
	CurrentUserKey    = "current-user"
	AccountRecordsKey = "account-records"
)

// defaultPhoneRegion is used to parse numbers entered without a country code.
const defaultPhoneRegion = "US"

// Account errors.
var (
	ErrAccountExists      = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrInvalidEmail       = errors.New("email address is not valid")
	ErrInvalidPhone       = errors.New("phone number is not valid")
	ErrEmptyPassword      = errors.New("password must not be empty")
)

// User is the authenticated identity a session is built for.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// AccountRecord is a registered account on this device.
type AccountRecord struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	PasswordHash []byte `json:"passwordHash"`
}

// User returns the identity of the record without its credentials.
func (r AccountRecord) User() User {
	return User{
		ID:          r.ID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		PhoneNumber: r.PhoneNumber,
	}
}

// Accounts is the device-wide account directory and current user holder.
type Accounts struct {
	kv      KeyValue
	records []AccountRecord
	mux     sync.RWMutex
}

// LoadAccounts reads the account records from the store. Unreadable records
// are treated as no accounts.
func LoadAccounts(kv KeyValue) *Accounts {
	a := &Accounts{kv: kv}
	if !kv.Load(AccountRecordsKey, &a.records) {
		a.records = nil
	}
	jww.DEBUG.Printf("[ACCOUNTS] Loaded %d account records", len(a.records))
	return a
}

// Register creates a new account and makes it the current user.
func (a *Accounts) Register(name, email, phone, password string) (User, error) {
	email = normalizeEmail(email)
	if err := checkmail.ValidateFormat(email); err != nil {
		return User{}, errors.WithMessage(ErrInvalidEmail, err.Error())
	}
	if password == "" {
		return User{}, ErrEmptyPassword
	}

	phone, err := NormalizePhone(phone)
	if err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, errors.WithMessage(err, "failed to hash password")
	}

	a.mux.Lock()
	defer a.mux.Unlock()

	for _, r := range a.records {
		if r.Email == email {
			return User{}, ErrAccountExists
		}
	}

	record := AccountRecord{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(name),
		PhoneNumber:  phone,
		PasswordHash: hash,
	}
	a.records = append(a.records, record)
	a.kv.Set(AccountRecordsKey, a.records)

	u := record.User()
	a.kv.Set(CurrentUserKey, u)
	jww.INFO.Printf("[ACCOUNTS] Registered %s as %s", u.Email, u.ID)
	return u, nil
}

// Login checks the credentials and makes the account the current user.
func (a *Accounts) Login(email, password string) (User, error) {
	record, exists := a.FindByEmail(email)
	if !exists {
		return User{}, ErrInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword(record.PasswordHash, []byte(password))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	u := record.User()
	a.kv.Set(CurrentUserKey, u)
	jww.INFO.Printf("[ACCOUNTS] %s logged in", u.Email)
	return u, nil
}

// CurrentUser returns the signed in user, if any.
func (a *Accounts) CurrentUser() (User, bool) {
	var u User
	if !a.kv.Load(CurrentUserKey, &u) || u.ID == "" {
		return User{}, false
	}
	return u, true
}

// Logout forgets the current user.
func (a *Accounts) Logout() {
	a.kv.Remove(CurrentUserKey)
}

// Records returns a copy of all account records in registration order.
func (a *Accounts) Records() []AccountRecord {
	a.mux.RLock()
	defer a.mux.RUnlock()
	out := make([]AccountRecord, len(a.records))
	copy(out, a.records)
	return out
}

// FindByEmail looks up an account by email, ignoring case.
func (a *Accounts) FindByEmail(email string) (AccountRecord, bool) {
	email = normalizeEmail(email)
	a.mux.RLock()
	defer a.mux.RUnlock()
	for _, r := range a.records {
		if r.Email == email {
			return r, true
		}
	}
	return AccountRecord{}, false
}

// FindByID looks up an account by id.
func (a *Accounts) FindByID(id string) (AccountRecord, bool) {
	a.mux.RLock()
	defer a.mux.RUnlock()
	for _, r := range a.records {
		if r.ID == id {
			return r, true
		}
	}
	return AccountRecord{}, false
}

// FindByPhone looks up an account by phone number. The number is normalized
// before comparison; unparsable numbers never match.
func (a *Accounts) FindByPhone(phone string) (AccountRecord, bool) {
	phone, err := NormalizePhone(phone)
	if err != nil || phone == "" {
		return AccountRecord{}, false
	}
	a.mux.RLock()
	defer a.mux.RUnlock()
	for _, r := range a.records {
		if r.PhoneNumber == phone {
			return r, true
		}
	}
	return AccountRecord{}, false
}

// NormalizePhone returns the number in E.164 form. An empty number is allowed
// and returned as is.
func NormalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", nil
	}
	num, err := libphonenumber.Parse(phone, defaultPhoneRegion)
	if err != nil {
		return "", errors.WithMessage(ErrInvalidPhone, err.Error())
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
