// Package disha answers Ask Disha chat messages with canned help texts.
package disha

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Topic names the canned answer a message matched
type Topic string

const (
	TopicPNR      Topic = "pnr"
	TopicTrain    Topic = "train"
	TopicBooking  Topic = "booking"
	TopicRefund   Topic = "refund"
	TopicStation  Topic = "station"
	TopicFood     Topic = "food"
	TopicGreeting Topic = "greeting"
	TopicDefault  Topic = "default"
)

var ErrEmptyMessage = errors.New("message is empty")

// Welcome is the first message of a conversation
const Welcome = "Hello! I'm Disha 2.0, your AI assistant for Indian Railways. How can I help you today?"

// QuickQuestions are the suggested prompts
var QuickQuestions = []string{
	"Check PNR status",
	"Train running status",
	"Booking help",
	"Refund process",
	"Station facilities",
	"Food ordering",
}

var answers = map[Topic]string{
	TopicPNR:      "To check your PNR status, you can:\n\n1. Visit the PNR Status page from the navigation menu\n2. Enter your 10-digit PNR number\n3. Get real-time updates on your booking status\n\nYour PNR number is printed on your ticket. It's a 10-digit number that helps track your reservation.",
	TopicTrain:    "For live train status:\n\n1. Go to Live Status page\n2. Enter train number or name\n3. View real-time location and delay information\n\nYou'll get updates on:\n• Current station\n• Expected arrival/departure times\n• Delay information\n• Platform numbers",
	TopicBooking:  "To book train tickets:\n\n1. Click 'Book Tickets' from the home page\n2. Enter source and destination stations\n3. Select travel date and class\n4. Choose from available trains\n5. Select seats and enter passenger details\n6. Make payment\n\nFor best availability, book in advance. Tatkal booking opens 1 day before journey.",
	TopicRefund:   "For ticket refunds:\n\n1. Cancellation charges apply based on time before departure\n2. Online cancellation is available up to 4 hours before departure\n3. Refund amount depends on ticket type and cancellation time\n4. Money is refunded to original payment source\n\nFor e-tickets, cancellation can be done online. For counter tickets, visit the station.",
	TopicStation:  "Station facilities include:\n\n• Waiting rooms\n• Food courts and vendors\n• ATMs and banking services\n• Parking facilities\n• WiFi in major stations\n• Wheelchair accessibility\n• Enquiry counters\n\nUse 'At Station' feature to check arrivals and departures at any station.",
	TopicFood:     "For ordering food in trains:\n\n1. Use Pantry Cart feature\n2. Enter your train number and seat\n3. Browse menu categories (Meals, Snacks, Beverages)\n4. Add items to cart\n5. Place order for delivery at seat\n\nFood is delivered within 30-45 minutes at the next major station.",
	TopicGreeting: "Hello! I'm here to help you with all your railway-related queries. You can ask me about:\n\n• Ticket booking and PNR status\n• Train schedules and live status\n• Station information\n• Food ordering\n• Refunds and cancellations\n\nWhat would you like to know?",
	TopicDefault:  "I can help you with various railway services including:\n\n• Checking PNR status and train schedules\n• Booking tickets and seat selection\n• Station information and facilities\n• Food ordering in trains\n• Refund and cancellation policies\n\nPlease let me know what specific information you need, and I'll be happy to assist you!",
}

// rule matches when every group has at least one keyword in the message
type rule struct {
	topic  Topic
	groups [][]string
}

// Evaluated in order, the first match wins. Matching is plain substring
// search on the lower-cased message, so "status" alone already means PNR.
var rules = []rule{
	{TopicPNR, [][]string{{"pnr", "status"}}},
	{TopicTrain, [][]string{{"train"}, {"status", "live", "running"}}},
	{TopicBooking, [][]string{{"book", "ticket", "reservation"}}},
	{TopicRefund, [][]string{{"refund", "cancel", "return"}}},
	{TopicStation, [][]string{{"station", "facility", "amenity"}}},
	{TopicFood, [][]string{{"food", "pantry", "meal"}}},
	{TopicGreeting, [][]string{{"hello", "hi", "hey"}}},
}

func (r rule) matches(message string) bool {
	for _, group := range r.groups {
		if !containsAny(message, group) {
			return false
		}
	}
	return true
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Classify picks the topic for a message
func Classify(message string) Topic {
	message = strings.ToLower(message)
	for _, r := range rules {
		if r.matches(message) {
			return r.topic
		}
	}
	return TopicDefault
}

// Answer returns the canned text of a topic
func Answer(topic Topic) string {
	if text, ok := answers[topic]; ok {
		return text
	}
	return answers[TopicDefault]
}

// Reply is Disha's answer to one message
type Reply struct {
	ID        string    `json:"id"`
	Topic     Topic     `json:"topic"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Respond answers a user message
func Respond(message string) (Reply, error) {
	if strings.TrimSpace(message) == "" {
		return Reply{}, ErrEmptyMessage
	}

	topic := Classify(message)
	return Reply{
		ID:        uuid.NewString(),
		Topic:     topic,
		Text:      Answer(topic),
		Sender:    "disha",
		Timestamp: time.Now(),
	}, nil
}
