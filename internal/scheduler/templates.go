package scheduler

import (
	"fmt"
	"strings"
)

// ReminderMessage is the gentle nudge sent while we still hope for a reply
func ReminderMessage(contactName, eventName string) string {
	var sb strings.Builder
	sb.WriteString(greeting(contactName))
	sb.WriteString(fmt.Sprintf("Just checking in on my earlier note about %s. ", eventName))
	sb.WriteString("We're still finalizing our vendor list and would love to hear from you.\n\n")
	sb.WriteString("If the timing doesn't work on your end, no worries at all - a quick note either way helps us plan.\n\n")
	sb.WriteString("Thanks!\n")
	return sb.String()
}

// BreakupMessage closes the loop on the last follow-up
func BreakupMessage(contactName, eventName string) string {
	var sb strings.Builder
	sb.WriteString(greeting(contactName))
	sb.WriteString(fmt.Sprintf("I haven't heard back about %s, so I'll assume the timing doesn't work and move forward with other vendors. ", eventName))
	sb.WriteString("If anything changes, feel free to reach out.\n\n")
	sb.WriteString("Thanks for your time!\n")
	return sb.String()
}

func greeting(contactName string) string {
	if contactName == "" {
		return "Hi,\n\n"
	}
	return fmt.Sprintf("Hi %s,\n\n", contactName)
}
