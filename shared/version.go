package shared

// Version of the module, stamped into log fields by the CLIs.
const Version = "0.2.0"
