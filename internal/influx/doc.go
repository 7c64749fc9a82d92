// Package influx exports monitor traffic to InfluxDB 2.
//
// Each confirmed frame becomes one point tagged with the slave address,
// function name and exception flag; each noise segment becomes one point
// tagged with its discard reason. Only metadata is written, never the
// register payload.
package influx
