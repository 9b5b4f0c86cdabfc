// Package devserver is an in-memory reference implementation of the
// knowledge-base REST API, used for local development and by the client's
// integration tests. State lives in maps; nothing survives a restart.
package devserver

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/smolyakovd/inkpad/internal/client/models"
	"github.com/smolyakovd/inkpad/internal/logging"
)

var (
	errNotFound     = errors.New("not found")
	errUnauthorized = errors.New("unauthorized")
	errForbidden    = errors.New("forbidden")
	errBadRequest   = errors.New("bad request")
)

type account struct {
	user         models.User
	passwordHash []byte
}

type permKey struct {
	docID  int64
	userID int64
}

// Server holds the in-memory store and the token secret. All access goes
// through the mutex; handlers are thin wrappers around these methods.
type Server struct {
	log    logging.Logger
	secret []byte
	now    func() time.Time

	mu       sync.Mutex
	accounts map[int64]*account
	docs     map[int64]*models.Document
	versions map[int64][]models.Version // per document, newest first
	perms    map[permKey]string
	nextUser int64
	nextDoc  int64
	nextVer  int64
}

func New(log logging.Logger, secret []byte) *Server {
	return &Server{
		log:      log,
		secret:   secret,
		now:      time.Now,
		accounts: map[int64]*account{},
		docs:     map[int64]*models.Document{},
		versions: map[int64][]models.Version{},
		perms:    map[permKey]string{},
		nextUser: 1,
		nextDoc:  1,
		nextVer:  1,
	}
}

func (s *Server) register(name, email, password string) (models.User, error) {
	if name == "" || email == "" || password == "" {
		return models.User{}, errBadRequest
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.user.Email == email {
			return models.User{}, errBadRequest
		}
	}
	u := models.User{ID: s.nextUser, Name: name, Email: email}
	s.nextUser++
	s.accounts[u.ID] = &account{user: u, passwordHash: hash}
	return u, nil
}

func (s *Server) login(email, password string) (string, error) {
	s.mu.Lock()
	var acct *account
	for _, a := range s.accounts {
		if a.user.Email == email {
			acct = a
			break
		}
	}
	s.mu.Unlock()

	if acct == nil {
		return "", errUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return "", errUnauthorized
	}

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatInt(acct.user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(24 * time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// authenticate resolves a bearer token to the account it was minted for.
func (s *Server) authenticate(token string) (models.User, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnauthorized
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return models.User{}, errUnauthorized
	}
	claims := parsed.Claims.(*jwt.RegisteredClaims)
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return models.User{}, errUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[id]
	if !ok {
		return models.User{}, errUnauthorized
	}
	return acct.user, nil
}

func (s *Server) canView(doc *models.Document, userID int64) bool {
	if doc.IsPublic || doc.AuthorID == userID {
		return true
	}
	_, ok := s.perms[permKey{docID: doc.ID, userID: userID}]
	return ok
}

func (s *Server) canEdit(doc *models.Document, userID int64) bool {
	if doc.AuthorID == userID {
		return true
	}
	return s.perms[permKey{docID: doc.ID, userID: userID}] == models.PermissionEdit
}

func (s *Server) createDocument(user models.User, p models.DocumentPayload) (*models.Document, error) {
	if p.Title == "" && p.Content == "" {
		return nil, errBadRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	doc := &models.Document{
		ID:        s.nextDoc,
		CreatedAt: now,
		UpdatedAt: now,
		Title:     p.Title,
		Content:   p.Content,
		IsPublic:  p.IsPublic,
		AuthorID:  user.ID,
		Author:    user,
	}
	s.nextDoc++
	s.docs[doc.ID] = doc
	return cloneDoc(doc), nil
}

func (s *Server) getDocument(user models.User, id int64) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, errNotFound
	}
	if !s.canView(doc, user.ID) {
		return nil, errForbidden
	}
	return cloneDoc(doc), nil
}

// mentionID matches the data-id attribute of embedded mention tokens.
var mentionID = regexp.MustCompile(`data-id="(\d+)"`)

func (s *Server) updateDocument(user models.User, id int64, p models.DocumentPayload) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, errNotFound
	}
	if !s.canEdit(doc, user.ID) {
		return nil, errForbidden
	}

	// snapshot the state being replaced
	v := models.Version{
		ID:         s.nextVer,
		CreatedAt:  s.now(),
		DocumentID: doc.ID,
		Title:      doc.Title,
		Content:    doc.Content,
		AuthorID:   user.ID,
		Author:     user,
	}
	s.nextVer++
	s.versions[doc.ID] = append([]models.Version{v}, s.versions[doc.ID]...)

	doc.Title = p.Title
	doc.Content = p.Content
	doc.IsPublic = p.IsPublic
	doc.UpdatedAt = s.now()

	// every mentioned user (except the author) gets view access
	for _, m := range mentionID.FindAllStringSubmatch(doc.Content, -1) {
		uid, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || uid == doc.AuthorID {
			continue
		}
		if _, ok := s.accounts[uid]; !ok {
			continue
		}
		key := permKey{docID: doc.ID, userID: uid}
		if _, ok := s.perms[key]; !ok {
			s.perms[key] = models.PermissionView
		}
	}

	return cloneDoc(doc), nil
}

func (s *Server) listDocuments(user models.User) []models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Document
	for _, doc := range s.docs {
		if s.canView(doc, user.ID) {
			out = append(out, *doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

func (s *Server) searchDocuments(user models.User, q string) []models.Document {
	if q == "" {
		return nil
	}
	needle := strings.ToLower(q)

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Document
	for _, doc := range s.docs {
		if !s.canView(doc, user.ID) {
			continue
		}
		if strings.Contains(strings.ToLower(doc.Title), needle) ||
			strings.Contains(strings.ToLower(doc.Content), needle) {
			out = append(out, *doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

func (s *Server) listVersions(user models.User, docID int64) ([]models.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[docID]
	if !ok {
		return nil, errNotFound
	}
	if !s.canView(doc, user.ID) {
		return nil, errForbidden
	}
	return append([]models.Version(nil), s.versions[docID]...), nil
}

func (s *Server) searchUsers(q string) []models.User {
	if q == "" {
		return nil
	}
	needle := strings.ToLower(q)

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, a := range s.accounts {
		if strings.Contains(strings.ToLower(a.user.Name), needle) ||
			strings.Contains(strings.ToLower(a.user.Email), needle) {
			out = append(out, a.user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) share(user models.User, docID int64, email, level string) error {
	if level != models.PermissionView && level != models.PermissionEdit {
		return errBadRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[docID]
	if !ok {
		return errNotFound
	}
	if doc.AuthorID != user.ID {
		return errForbidden
	}
	for _, a := range s.accounts {
		if a.user.Email == email {
			s.perms[permKey{docID: docID, userID: a.user.ID}] = level
			return nil
		}
	}
	return errNotFound
}

func cloneDoc(doc *models.Document) *models.Document {
	c := *doc
	return &c
}
