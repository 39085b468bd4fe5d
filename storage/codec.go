package storage

// Codec serializes and deserializes a DataStorage snapshot, so a
// caller can cache a parsed timetable across process restarts instead
// of re-running the full HRDF ingestion pipeline. No concrete codec
// ships in this package; callers pick an encoding (gob, JSON,
// protobuf, ...) and implement this interface against it.
type Codec interface {
	Encode(ds *DataStorage) ([]byte, error)
	Decode(data []byte) (*DataStorage, error)
}
