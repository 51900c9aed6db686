package server

import (
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/danmuck/steemtx/internal/auth"
	"github.com/danmuck/steemtx/internal/keys"
	"github.com/danmuck/steemtx/internal/protocol"
	"github.com/danmuck/steemtx/internal/protocol/schema"
	"github.com/danmuck/steemtx/internal/tx"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", s.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	v1.GET("/operations", s.listOperations)
	v1.POST("/tx/serialize", s.serialize)
	v1.POST("/tx/digest", s.digest)
	v1.POST("/tx/payload", s.payload)
	if s.SigningEnabled() {
		v1.POST("/tx/sign", requireToken(s.validator), s.sign)
	} else {
		v1.POST("/tx/sign", func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signing disabled"})
		})
	}
}

func requireToken(v auth.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err == nil {
			err = v.Validate(token)
		}
		if err != nil {
			log.Warn().Str("client_ip", c.ClientIP()).Msg("sign request rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrUnauthorized.Error()})
			return
		}
		c.Next()
	}
}

// statusFor maps codec and signer errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tx.ErrSigningExhausted):
		return http.StatusInternalServerError
	case errors.Is(err, tx.ErrMissingSigningKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, schema.ErrUnknownOperationType),
		errors.Is(err, protocol.ErrUnsupportedValueKind),
		errors.Is(err, protocol.ErrUnregisteredAsset),
		errors.Is(err, protocol.ErrAssetMismatch),
		errors.Is(err, protocol.ErrChainMismatch),
		errors.Is(err, protocol.ErrInvalidAmount),
		errors.Is(err, protocol.ErrValueOutOfRange),
		errors.Is(err, protocol.ErrInvalidTimestamp):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func fail(c *gin.Context, err error) {
	status := statusFor(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) bind(c *gin.Context) (*tx.Transaction, bool) {
	var req tx.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	t, err := s.builder.Transaction(req)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return t, true
}

func (s *Server) serialize(c *gin.Context) {
	t, ok := s.bind(c)
	if !ok {
		return
	}
	codec := s.builder.Codec()
	b, err := codec.Serialize(t)
	if err != nil {
		fail(c, err)
		return
	}
	id, _ := codec.ID(t)
	c.JSON(http.StatusOK, gin.H{
		"chain": t.Chain,
		"hex":   hex.EncodeToString(b),
		"tx_id": id,
	})
}

func (s *Server) digest(c *gin.Context) {
	t, ok := s.bind(c)
	if !ok {
		return
	}
	codec := s.builder.Codec()
	d, err := codec.Digest(t)
	if err != nil {
		fail(c, err)
		return
	}
	id, _ := codec.ID(t)
	c.JSON(http.StatusOK, gin.H{
		"chain":  t.Chain,
		"digest": hex.EncodeToString(d[:]),
		"tx_id":  id,
	})
}

func (s *Server) payload(c *gin.Context) {
	t, ok := s.bind(c)
	if !ok {
		return
	}
	p, err := s.builder.Payload(t)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": p})
}

func (s *Server) sign(c *gin.Context) {
	t, ok := s.bind(c)
	if !ok {
		return
	}
	res, err := s.signer.Sign(c.Request.Context(), t)
	if err != nil {
		log.Error().Err(err).Str("chain", string(t.Chain)).Msg("sign failed")
		fail(c, err)
		return
	}
	p, err := s.builder.Payload(t)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transaction": p,
		"tx_id":       res.TxID,
		"digest":      hex.EncodeToString(res.Digest[:]),
		"attempts":    res.Attempts,
		"signer":      keys.FormatPublicKey(s.signer.PublicKey(), s.prefix(t)),
	})
}

func (s *Server) prefix(t *tx.Transaction) string {
	if n, ok := s.builder.Codec().Assets.Network(t.Chain); ok && n.AddressPrefix != "" {
		return n.AddressPrefix
	}
	return "STM"
}

type operationInfo struct {
	ID       uint8    `json:"id"`
	Name     string   `json:"name"`
	Params   []string `json:"params"`
	Reserved bool     `json:"reserved,omitempty"`
}

func (s *Server) listOperations(c *gin.Context) {
	rows := s.Registry.All()
	out := make([]operationInfo, 0, len(rows))
	for _, row := range rows {
		params := make([]string, 0, len(row.Params))
		for _, p := range row.Params {
			params = append(params, p.Name+":"+p.Kind.String())
		}
		out = append(out, operationInfo{ID: row.ID, Name: row.Name, Params: params, Reserved: row.Reserved})
	}
	c.JSON(http.StatusOK, gin.H{"operations": out})
}
