package app

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type Capability string

const (
	CapManageBusiness     Capability = "business:manage"
	CapManageServices     Capability = "services:manage"
	CapManageEmployees    Capability = "employees:manage"
	CapManageSchedules    Capability = "schedules:manage"
	CapManageAppointments Capability = "appointments:manage"
	CapViewDashboard      Capability = "dashboard:view"
	CapViewAgenda         Capability = "agenda:view"
	CapManageProfile      Capability = "profile:manage"
	CapConnectCalendar    Capability = "calendar:connect"
	CapSendEmail          Capability = "email:send"
	CapSeedAppointments   Capability = "appointments:seed"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin: {
		CapManageBusiness, CapManageServices, CapManageEmployees, CapManageSchedules,
		CapManageAppointments, CapViewDashboard, CapManageProfile, CapSeedAppointments,
	},
	RoleEmployee: {CapViewAgenda, CapManageProfile, CapConnectCalendar},
	RoleService:  {CapSendEmail, CapSeedAppointments},
}

// Principal is the authenticated caller of one request.
type Principal struct {
	UserID     string
	BusinessID string
	Role       Role
}

func (p Principal) Can(want Capability) bool {
	for _, c := range roleCapabilities[p.Role] {
		if c == want {
			return true
		}
	}
	return false
}

type Claims struct {
	BusinessID string `json:"business_id,omitempty"`
	Role       Role   `json:"role"`
	Purpose    string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

const (
	purposeAccess   = "access"
	purposeCalendar = "calendar"
)

var errInvalidToken = errors.New("invalid token")

// TokenIssuer signs HS256 access tokens and recognises the static service
// tokens configured for machine callers.
type TokenIssuer struct {
	secret       []byte
	ttl          time.Duration
	staticTokens []string
	now          func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration, staticTokens []string) *TokenIssuer {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, staticTokens: staticTokens, now: time.Now}
}

func (t *TokenIssuer) Issue(u *User) (string, error) {
	return t.sign(u.ID, u.BusinessID, u.Role, purposeAccess, t.ttl)
}

// SignState produces the OAuth state parameter that ties a calendar
// consent callback back to an employee.
func (t *TokenIssuer) SignState(employeeID string) (string, error) {
	return t.sign(employeeID, "", RoleEmployee, purposeCalendar, 15*time.Minute)
}

func (t *TokenIssuer) VerifyState(state string) (string, error) {
	claims, err := t.parse(state)
	if err != nil {
		return "", err
	}
	if claims.Purpose != purposeCalendar {
		return "", errInvalidToken
	}
	return claims.Subject, nil
}

func (t *TokenIssuer) sign(subject, businessID string, role Role, purpose string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		BusinessID: businessID,
		Role:       role,
		Purpose:    purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) parse(tokenStr string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return t.secret, nil
	}, jwt.WithLeeway(5*time.Second), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}
	return &claims, nil
}

// Resolve turns a bearer token into a principal. JWTs are tried first,
// then the static tokens.
func (t *TokenIssuer) Resolve(tokenStr string) (Principal, error) {
	if claims, err := t.parse(tokenStr); err == nil {
		if claims.Purpose != purposeAccess || claims.Subject == "" {
			return Principal{}, errInvalidToken
		}
		return Principal{UserID: claims.Subject, BusinessID: claims.BusinessID, Role: claims.Role}, nil
	}

	for _, st := range t.staticTokens {
		if subtle.ConstantTimeCompare([]byte(tokenStr), []byte(st)) == 1 {
			return Principal{Role: RoleService}, nil
		}
	}
	return Principal{}, errInvalidToken
}

const principalKey = "principal"

// Authenticate requires a bearer token and stores the resolved principal
// in the request context.
func (a *App) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}
		parts := strings.Fields(auth)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		p, err := a.Tokens.Resolve(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// RequireCapability lets the request through only if the principal holds
// every listed capability.
func RequireCapability(caps ...Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		for _, want := range caps {
			if !p.Can(want) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// mustPrincipal is for handlers mounted behind Authenticate.
func mustPrincipal(c *gin.Context) Principal {
	p, _ := principalFrom(c)
	return p
}

// HomePath is where a freshly logged in user lands.
func HomePath(r Role) string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleEmployee:
		return "/employee/dashboard"
	default:
		return "/auth/register"
	}
}
