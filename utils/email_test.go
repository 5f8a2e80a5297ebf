package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/models"
)

func TestFormatVND(t *testing.T) {
	assert.Equal(t, "0 ₫", FormatVND(0))
	assert.Equal(t, "30.000 ₫", FormatVND(30000))
	assert.Equal(t, "32.990.000 ₫", FormatVND(32990000))
	assert.Equal(t, "-500 ₫", FormatVND(-500))
}

func TestNewEmailServiceRequiresCredentials(t *testing.T) {
	_, err := NewEmailService(&Config{EmailProvider: "postmark"})
	assert.Error(t, err)
	_, err = NewEmailService(&Config{EmailProvider: "sendgrid"})
	assert.Error(t, err)
}

func TestDisabledEmailServiceDropsMessages(t *testing.T) {
	es, err := NewEmailService(&Config{EmailProvider: "none", EmailSender: "shop@example.com"})
	require.NoError(t, err)

	order := &models.Order{
		ID:    primitive.NewObjectID(),
		Items: []models.OrderItem{{Name: "iPhone 15", Price: 21990000, Quantity: 1}},
		Total: 21990000,
	}
	assert.NoError(t, es.SendOrderConfirmationEmail("an@example.com", order))

	_, text := orderConfirmationBody(order)
	assert.Contains(t, text, "1 x iPhone 15: 21.990.000 ₫")
	assert.Contains(t, text, order.ID.Hex())
}
