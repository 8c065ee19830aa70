// Package reminders reads and writes Reminders.app through the automation
// bridge.
//
// Every reminder list is an independent store. List and Find read all lists
// and tolerate individual lists failing; Create writes to one list; Complete
// locates a reminder by id inside its own list and flips it to completed.
// Reminder ids are only unique within a list.
package reminders
