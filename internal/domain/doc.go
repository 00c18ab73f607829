// Package domain holds the taxi-trip feature rules used to prepare the NYC
// taxi fare dataset for model training.
//
// # Data Source
//
// Input rows follow the NYC taxi fare export used for fare prediction:
//
//	pickup_datetime,fare_amount,fare_class,pickup_longitude,pickup_latitude,
//	dropoff_longitude,dropoff_latitude,passenger_count
//
// pickup_datetime is "2010-04-19 08:17:56 UTC". Coordinates are WGS-84 degrees.
// Rows with a zero or missing coordinate exist in the raw data and are kept;
// they produce a missing or meaningless distance rather than an error.
//
// # Derived Features
//
// Distance:
//
//	Haversine great-circle distance between pickup and dropoff on a sphere of
//	radius 6371 km, rounded half-to-even to 2 decimals. See [HaversineDistance].
//
// Hour:
//
//	The pickup hour as a two-digit string ("00".."23") normalized to an int by
//	[ModifyHour]. Leading zeros are handled by a [ZeroPolicy]; the default,
//	[StripAllZeros], deletes every zero of a string that starts with "0", which
//	is harmless for two-digit hours but turns "010" into 1.
//
// AM/PM:
//
//	[AmOrPm] labels 0..12 "AM" and 13..23 "PM". Noon is "AM" in this dataset's
//	convention, not the 12-hour clock's.
package domain
