package service

import (
	"fmt"
	"math/rand"
	"time"
)

/* =========================================================
   Gateway-facing reference ids
========================================================= */

// NewMerchantRef builds a merchant reference of the form
// <yyyyMMddHHmmssSSS>_<tag>_<5-digit random>. The millisecond timestamp
// plus the 10000–99999 suffix keeps concurrent ids distinct.
func NewMerchantRef(tag string) string {
	now := time.Now()
	dateString := now.Format("20060102150405") + fmt.Sprintf("%03d", now.Nanosecond()/1e6)
	randomString := rand.Intn(90000) + 10000
	return fmt.Sprintf("%s_%s_%d", dateString, tag, randomString)
}

// NewCustomerID builds the merchant customer id attached to a gateway
// profile: the course/enrollment code followed by a timestamp.
func NewCustomerID(prefix string) string {
	now := time.Now()
	dateString := fmt.Sprintf("%d%d%d%d%d%d%d",
		now.Year(), int(now.Month()), now.Day(),
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond()/1e6)
	return prefix + "_" + dateString
}
