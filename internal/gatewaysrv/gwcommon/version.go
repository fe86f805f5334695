package gwcommon

// ServerVersion is the gateway server version.
// The version follows semantic versioning (MAJOR.MINOR.PATCH).
const ServerVersion = "0.1.0"

// ApiVersion is the version of the gateway's HTTP API.
const ApiVersion = "0.1.0"
