package soundtrack

const accountsQuery = `
query SchedulerAccounts {
  me {
    ... on PublicAPIClient {
      accounts(first: 500) {
        edges {
          node {
            id
            businessName
          }
        }
      }
    }
  }
}
`

const accountQuery = `
query SchedulerAccount($id: ID!) {
  account(id: $id) {
    id
    businessName
  }
}
`

const accountZonesQuery = `
query Scheduler_Zones($id: ID!, $cursor: String) {
  account(id: $id) {
    id
    soundZones(first: 100, after: $cursor) {
      pageInfo {
        hasNextPage
        endCursor
      }
      edges {
        node {
          id
          name
          location {
            id
            name
          }
        }
      }
    }
  }
}
`

const zoneQuery = `
query Scheduler_Zone($id: ID!) {
  soundZone(id: $id) {
    id
    name
    location {
      id
      name
    }
    account {
      id
    }
  }
}
`

const displayFragment = `
fragment DisplayFragment on Displayable {
  display { image { sizes { thumbnail }}}
}
`

const playlistFragment = `
fragment PlaylistFragment on Playlist {
  __typename
  id
  name
  createdAt
  updatedAt
  ...DisplayFragment
}
`

const scheduleFragment = `
fragment ScheduleFragment on Schedule {
  __typename
  id
  name
  createdAt
  updatedAt
  ...DisplayFragment
}
`

const libraryQuery = displayFragment + playlistFragment + scheduleFragment + `
query Scheduler_Library($accountId: ID!) {
  account(id: $accountId) {
    musicLibrary {
      playlists(first: 1000) {
        edges {
          node {
            ...PlaylistFragment
          }
        }
      }
      schedules(first: 1000) {
        edges {
          node {
            ...ScheduleFragment
          }
        }
      }
    }
  }
}
`

const assignableQuery = displayFragment + playlistFragment + scheduleFragment + `
query Scheduler_Assignable($assignableId: ID!) {
  playlist: playlist(id: $assignableId) {
    ...PlaylistFragment
  }
  schedule: schedule(id: $assignableId) {
    ...ScheduleFragment
  }
}
`

const assignMutation = `
mutation Scheduler_Assign($zoneId: ID!, $playFromId: ID!) {
  soundZoneAssignSource(input: { soundZones: [$zoneId], source: $playFromId }) {
    soundZones
  }
}
`

const loginMutation = `
mutation Scheduler_Login($email: String!, $password: String!) {
  loginUser(input: { email: $email, password: $password }) {
    token
    refreshToken
    expiresAt
  }
}
`

const refreshMutation = `
mutation Scheduler_Refresh($refreshToken: String!) {
  refreshLogin(input: { refreshToken: $refreshToken }) {
    token
    refreshToken
    expiresAt
  }
}
`
