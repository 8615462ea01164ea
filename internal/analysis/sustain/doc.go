// Package sustain measures how long a condition has held continuously.
package sustain
